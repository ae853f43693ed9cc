package syncrun

import "context"

type Repository interface {
	Save(ctx context.Context, run Run) error
	GetByID(ctx context.Context, id string) (Run, bool, error)
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}
