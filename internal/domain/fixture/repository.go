package fixture

import "context"

// Repository persists the fixture table wholesale.
type Repository interface {
	Load(ctx context.Context) (Table, error)
	Save(ctx context.Context, table Table) error
}
