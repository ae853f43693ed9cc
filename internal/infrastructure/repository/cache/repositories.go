package cache

import (
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	basecache "github.com/riskibarqy/ground-setup/internal/platform/cache"
)

const (
	fixtureTableKey = "fixture:table"
	rosterKey       = "roster:entries"
	weekPrefix      = "groundview:"
	weekListKey     = weekPrefix + "weeks"
)

// Invalidator purges every cached table after a sync writes.
type Invalidator struct {
	cache *basecache.Store
}

func NewInvalidator(cache *basecache.Store) *Invalidator {
	return &Invalidator{cache: cache}
}

func (i *Invalidator) TablesChanged(ctx context.Context) {
	i.cache.Purge(ctx)
}

type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) Load(ctx context.Context) (fixture.Table, error) {
	table, err := basecache.Load(ctx, r.cache, fixtureTableKey, func(ctx context.Context) (fixture.Table, error) {
		return r.next.Load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return table.Clone(), nil
}

func (r *FixtureRepository) Save(ctx context.Context, table fixture.Table) error {
	defer r.cache.DeletePrefix(ctx, fixtureTableKey)
	return r.next.Save(ctx, table)
}

type RosterRepository struct {
	next  roster.Repository
	cache *basecache.Store
}

func NewRosterRepository(next roster.Repository, cache *basecache.Store) *RosterRepository {
	return &RosterRepository{next: next, cache: cache}
}

func (r *RosterRepository) Load(ctx context.Context) ([]roster.Entry, error) {
	entries, err := basecache.Load(ctx, r.cache, rosterKey, func(ctx context.Context) ([]roster.Entry, error) {
		return r.next.Load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(entries), nil
}

func (r *RosterRepository) Save(ctx context.Context, entries []roster.Entry) error {
	defer r.cache.DeletePrefix(ctx, rosterKey)
	return r.next.Save(ctx, entries)
}

type GroundViewRepository struct {
	next  groundview.Repository
	cache *basecache.Store
}

func NewGroundViewRepository(next groundview.Repository, cache *basecache.Store) *GroundViewRepository {
	return &GroundViewRepository{next: next, cache: cache}
}

func (r *GroundViewRepository) ReplaceWeek(ctx context.Context, view groundview.View) error {
	defer r.cache.DeletePrefix(ctx, weekPrefix)
	return r.next.ReplaceWeek(ctx, view)
}

func (r *GroundViewRepository) GetWeek(ctx context.Context, weekStart time.Time) (groundview.View, bool, error) {
	key := weekPrefix + "week:" + groundview.WeekKey(weekStart)
	cached, err := basecache.Load(ctx, r.cache, key, func(ctx context.Context) (cachedWeek, error) {
		view, exists, err := r.next.GetWeek(ctx, weekStart)
		return cachedWeek{view: view, exists: exists}, err
	})
	if err != nil {
		return groundview.View{}, false, err
	}

	view := cached.view
	view.Rows = slices.Clone(view.Rows)
	return view, cached.exists, nil
}

func (r *GroundViewRepository) ListWeeks(ctx context.Context) ([]time.Time, error) {
	weeks, err := basecache.Load(ctx, r.cache, weekListKey, func(ctx context.Context) ([]time.Time, error) {
		return r.next.ListWeeks(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(weeks), nil
}

type cachedWeek struct {
	view   groundview.View
	exists bool
}
