package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/infrastructure/repository/memory"
)

type recordingQueue struct {
	paths  []string
	delays []time.Duration
	dedup  []string
	err    error
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, _ any, delay time.Duration, dedupID string) error {
	if q.err != nil {
		return q.err
	}
	q.paths = append(q.paths, path)
	q.delays = append(q.delays, delay)
	q.dedup = append(q.dedup, dedupID)
	return nil
}

func TestDedupKey_UsesQStashSafeFormat(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.May, 1, 4, 25, 42, 0, time.UTC)
	got := dedupKey("sync:weekly run", at, 5*time.Minute)

	if strings.Contains(got, ":") {
		t.Fatalf("dedup key must not contain colon, got=%q", got)
	}
	want := "sync-weekly-run-20240501T042500Z"
	if got != want {
		t.Fatalf("unexpected dedup key: got=%q want=%q", got, want)
	}
}

func TestSanitizeDedupSegment_EmptyFallback(t *testing.T) {
	t.Parallel()

	if got := sanitizeDedupSegment(" \t "); got != "unknown" {
		t.Fatalf("unexpected sanitize fallback: got=%q want=%q", got, "unknown")
	}
}

func TestSyncJobService_RunSyncJob_QueuesNextEvenOnFailure(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{}
	sync := newTestSyncService(t, &fakePageSource{err: errors.New("timeout")},
		memory.NewFixtureRepository(nil), memory.NewRosterRepository(nil), memory.NewGroundViewRepository(), nil)
	jobs := NewSyncJobService(sync, queue, SyncJobConfig{Interval: 6 * time.Hour}, nil)
	jobs.now = func() time.Time { return fetchNow }

	result, err := jobs.RunSyncJob(context.Background(), SyncJobInput{DispatchID: "d-1"})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if result.QueuedCount != 1 || len(queue.paths) != 1 || queue.paths[0] != SyncJobPath {
		t.Fatalf("expected next job queued: result=%+v queue=%+v", result, queue)
	}
	if queue.delays[0] != 6*time.Hour {
		t.Fatalf("unexpected delay: got=%s want=%s", queue.delays[0], 6*time.Hour)
	}
	if result.Sync == nil || result.Sync.Trigger != TriggerQueue {
		t.Fatalf("unexpected sync result: %+v", result.Sync)
	}
}

func TestSyncJobService_Bootstrap_QueueFailure(t *testing.T) {
	t.Parallel()

	queue := &recordingQueue{err: errors.New("qstash 500")}
	jobs := NewSyncJobService(nil, queue, SyncJobConfig{}, nil)

	_, err := jobs.Bootstrap(context.Background())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
