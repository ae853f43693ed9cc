package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
)

type fakePageSource struct {
	pages   map[string]FixturePage
	err     error
	cursors []string
}

func (f *fakePageSource) FetchFixturePage(_ context.Context, cursor string) (FixturePage, error) {
	f.cursors = append(f.cursors, cursor)
	if f.err != nil {
		return FixturePage{}, f.err
	}
	return f.pages[cursor], nil
}

var fetchNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestFetcher(source FixturePageSource) *FixtureFetcher {
	f := NewFixtureFetcher(source, nil)
	f.now = func() time.Time { return fetchNow }
	return f
}

func dated(id string, daysFromNow int) fixture.Record {
	return fixture.Record{FixtureID: id, Date: fetchNow.AddDate(0, 0, daysFromNow)}
}

func TestFixtureFetcher_StopsOnceFurthestDatePassesHorizon(t *testing.T) {
	t.Parallel()

	source := &fakePageSource{pages: map[string]FixturePage{
		"":   {Fixtures: []fixture.Record{dated("A", 1), dated("B", 5)}, NextCursor: "c2"},
		"c2": {Fixtures: []fixture.Record{dated("C", 20), dated("D", 40)}, NextCursor: "c3"},
		"c3": {Fixtures: []fixture.Record{dated("E", 41)}, NextCursor: "c4"},
	}}

	got, err := newTestFetcher(source).Fetch(context.Background(), 31)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected record count: got=%d want=3", len(got))
	}
	if got[2].FixtureID != "C" {
		t.Fatalf("unexpected last record: got=%s want=C", got[2].FixtureID)
	}
	if len(source.cursors) != 2 {
		t.Fatalf("unexpected page requests: got=%v", source.cursors)
	}
}

func TestFixtureFetcher_OutOfOrderRecordsInsideHorizonKeepPaging(t *testing.T) {
	t.Parallel()

	// Page order is not guaranteed: a late record shows up before earlier ones.
	source := &fakePageSource{pages: map[string]FixturePage{
		"":   {Fixtures: []fixture.Record{dated("B", 10), dated("A", 2)}, NextCursor: "c2"},
		"c2": {Fixtures: []fixture.Record{dated("C", 3)}, NextCursor: "c3"},
		"c3": {Fixtures: []fixture.Record{dated("D", 12)}},
	}}

	got, err := newTestFetcher(source).Fetch(context.Background(), 31)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 4 || len(source.cursors) != 3 {
		t.Fatalf("unexpected result: records=%d pages=%v", len(got), source.cursors)
	}
}

func TestFixtureFetcher_KeepsUndatedRecords(t *testing.T) {
	t.Parallel()

	source := &fakePageSource{pages: map[string]FixturePage{
		"": {Fixtures: []fixture.Record{{FixtureID: "X"}, dated("A", 1)}},
	}}

	got, err := newTestFetcher(source).Fetch(context.Background(), 31)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0].FixtureID != "X" {
		t.Fatalf("expected undated record to be kept: %+v", got)
	}
}

func TestFixtureFetcher_EmptyResult(t *testing.T) {
	t.Parallel()

	source := &fakePageSource{pages: map[string]FixturePage{
		"": {Fixtures: []fixture.Record{dated("far", 60)}, NextCursor: "c2"},
	}}

	_, err := newTestFetcher(source).Fetch(context.Background(), 31)
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
	if errors.Is(err, ErrTransport) {
		t.Fatalf("empty result must not look like a transport failure")
	}
}

func TestFixtureFetcher_TransportFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	_, err := newTestFetcher(&fakePageSource{err: cause}).Fetch(context.Background(), 31)
	if !errors.Is(err, ErrTransport) || !errors.Is(err, cause) {
		t.Fatalf("expected transport error wrapping cause, got %v", err)
	}
}

func TestFixtureFetcher_RejectsNonPositiveHorizon(t *testing.T) {
	t.Parallel()

	_, err := newTestFetcher(&fakePageSource{}).Fetch(context.Background(), 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
