package groundview

import (
	"context"
	"time"
)

type Repository interface {
	ReplaceWeek(ctx context.Context, view View) error
	GetWeek(ctx context.Context, weekStart time.Time) (View, bool, error)
	ListWeeks(ctx context.Context) ([]time.Time, error)
}
