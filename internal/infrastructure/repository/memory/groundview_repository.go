package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
)

// GroundViewRepository keys weeks by their YYYY-MM-DD start date.
type GroundViewRepository struct {
	mu    sync.RWMutex
	views map[string]groundview.View
}

func NewGroundViewRepository() *GroundViewRepository {
	return &GroundViewRepository{views: make(map[string]groundview.View)}
}

func (r *GroundViewRepository) ReplaceWeek(_ context.Context, view groundview.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	view.Rows = slices.Clone(view.Rows)
	r.views[groundview.WeekKey(view.WeekStart)] = view
	return nil
}

func (r *GroundViewRepository) GetWeek(_ context.Context, weekStart time.Time) (groundview.View, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view, ok := r.views[groundview.WeekKey(weekStart)]
	if !ok {
		return groundview.View{}, false, nil
	}
	view.Rows = slices.Clone(view.Rows)
	return view, true, nil
}

func (r *GroundViewRepository) ListWeeks(_ context.Context) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]time.Time, 0, len(r.views))
	for _, view := range r.views {
		out = append(out, view.WeekStart)
	}
	slices.SortFunc(out, time.Time.Compare)
	return out, nil
}
