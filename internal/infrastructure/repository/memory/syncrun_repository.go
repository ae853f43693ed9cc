package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
)

// SyncRunRepository keeps the most recent runs, oldest evicted first.
type SyncRunRepository struct {
	mu       sync.RWMutex
	capacity int
	runs     []syncrun.Run
}

func NewSyncRunRepository(capacity int) *SyncRunRepository {
	if capacity <= 0 {
		capacity = 200
	}
	return &SyncRunRepository{capacity: capacity}
}

func (r *SyncRunRepository) Save(_ context.Context, run syncrun.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run.WeekStarts = slices.Clone(run.WeekStarts)
	if idx := r.indexOf(run.ID); idx >= 0 {
		r.runs[idx] = run
		return nil
	}
	r.runs = append(r.runs, run)
	if over := len(r.runs) - r.capacity; over > 0 {
		r.runs = slices.Delete(r.runs, 0, over)
	}
	return nil
}

func (r *SyncRunRepository) GetByID(_ context.Context, id string) (syncrun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return syncrun.Run{}, false, nil
	}
	return r.runs[idx], true, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *SyncRunRepository) ListRecent(_ context.Context, limit int) ([]syncrun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]syncrun.Run, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

func (r *SyncRunRepository) indexOf(id string) int {
	return slices.IndexFunc(r.runs, func(run syncrun.Run) bool { return run.ID == id })
}
