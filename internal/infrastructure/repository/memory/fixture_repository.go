package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
)

type FixtureRepository struct {
	mu    sync.RWMutex
	table fixture.Table
}

func NewFixtureRepository(seed fixture.Table) *FixtureRepository {
	return &FixtureRepository{table: seed.Clone()}
}

func (r *FixtureRepository) Load(_ context.Context) (fixture.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(fixture.Table, 0, len(r.table))
	out = append(out, r.table...)
	return out, nil
}

func (r *FixtureRepository) Save(_ context.Context, table fixture.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.table = table.Clone()
	return nil
}
