package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/ground-setup/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	entries []roster.Entry
}

func NewRosterRepository(seed []roster.Entry) *RosterRepository {
	return &RosterRepository{entries: append([]roster.Entry(nil), seed...)}
}

func (r *RosterRepository) Load(_ context.Context) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Entry, 0, len(r.entries))
	out = append(out, r.entries...)
	return out, nil
}

func (r *RosterRepository) Save(_ context.Context, entries []roster.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append([]roster.Entry(nil), entries...)
	return nil
}
