package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 200
)

// QueryService serves read access to the persisted tables.
type QueryService struct {
	fixtureRepo fixture.Repository
	rosterRepo  roster.Repository
	viewRepo    groundview.Repository
	runRepo     syncrun.Repository
	location    *time.Location
}

func NewQueryService(
	fixtureRepo fixture.Repository,
	rosterRepo roster.Repository,
	viewRepo groundview.Repository,
	runRepo syncrun.Repository,
	location *time.Location,
) *QueryService {
	if location == nil {
		location = time.UTC
	}
	return &QueryService{
		fixtureRepo: fixtureRepo,
		rosterRepo:  rosterRepo,
		viewRepo:    viewRepo,
		runRepo:     runRepo,
		location:    location,
	}
}

func (s *QueryService) Location() *time.Location {
	return s.location
}

func (s *QueryService) ListFixtures(ctx context.Context) (fixture.Table, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListFixtures")
	defer span.End()

	table, err := s.fixtureRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load fixture table: %w", err)
	}
	return table, nil
}

func (s *QueryService) ListRoster(ctx context.Context) ([]roster.Entry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListRoster")
	defer span.End()

	entries, err := s.rosterRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return entries, nil
}

func (s *QueryService) ListWeekViews(ctx context.Context) ([]time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListWeekViews")
	defer span.End()

	weeks, err := s.viewRepo.ListWeeks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list week views: %w", err)
	}
	return weeks, nil
}

// GetWeekView looks a week up by its YYYY-MM-DD start date.
func (s *QueryService) GetWeekView(ctx context.Context, weekKey string) (groundview.View, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetWeekView")
	defer span.End()

	weekStart, err := time.ParseInLocation(groundview.WeekKeyLayout, strings.TrimSpace(weekKey), s.location)
	if err != nil {
		return groundview.View{}, fmt.Errorf("%w: week start must be YYYY-MM-DD", ErrInvalidInput)
	}

	view, ok, err := s.viewRepo.GetWeek(ctx, weekStart)
	if err != nil {
		return groundview.View{}, fmt.Errorf("get week view: %w", err)
	}
	if !ok {
		return groundview.View{}, fmt.Errorf("%w: week=%s", ErrNotFound, groundview.WeekKey(weekStart))
	}
	return view, nil
}

func (s *QueryService) GetSyncRun(ctx context.Context, runID string) (syncrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.GetSyncRun")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return syncrun.Run{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	if s.runRepo == nil {
		return syncrun.Run{}, fmt.Errorf("%w: run=%s", ErrNotFound, runID)
	}

	run, ok, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return syncrun.Run{}, fmt.Errorf("get sync run: %w", err)
	}
	if !ok {
		return syncrun.Run{}, fmt.Errorf("%w: run=%s", ErrNotFound, runID)
	}
	return run, nil
}

func (s *QueryService) ListSyncRuns(ctx context.Context, limit int) ([]syncrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.QueryService.ListSyncRuns")
	defer span.End()

	if limit <= 0 {
		limit = defaultRunListLimit
	}
	if limit > maxRunListLimit {
		limit = maxRunListLimit
	}
	if s.runRepo == nil {
		return []syncrun.Run{}, nil
	}

	runs, err := s.runRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	return runs, nil
}
