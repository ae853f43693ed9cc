package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	groundviewmock "github.com/riskibarqy/ground-setup/internal/mocks/domain/groundview"
	syncrunmock "github.com/riskibarqy/ground-setup/internal/mocks/domain/syncrun"
	"github.com/stretchr/testify/mock"
)

func TestQueryService_GetWeekView(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	viewRepo := groundviewmock.NewRepository(t)
	week := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	viewRepo.
		On("GetWeek", mock.Anything, mock.MatchedBy(func(v time.Time) bool { return v.Equal(week) })).
		Return(groundview.View{WeekStart: week, Rows: []groundview.Row{{Ground: "The Green"}}}, true, nil).
		Once()

	svc := NewQueryService(nil, nil, viewRepo, nil, time.UTC)
	view, err := svc.GetWeekView(ctx, "2024-04-29")
	if err != nil {
		t.Fatalf("get week view: %v", err)
	}
	if len(view.Rows) != 1 {
		t.Fatalf("unexpected rows: got=%d want=1", len(view.Rows))
	}
}

func TestQueryService_GetWeekView_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	viewRepo := groundviewmock.NewRepository(t)
	viewRepo.On("GetWeek", mock.Anything, mock.Anything).Return(groundview.View{}, false, nil).Once()

	svc := NewQueryService(nil, nil, viewRepo, nil, time.UTC)
	if _, err := svc.GetWeekView(ctx, "29/04/2024"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.GetWeekView(ctx, "2024-04-29"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueryService_ListSyncRuns_ClampsLimit(t *testing.T) {
	t.Parallel()

	runRepo := syncrunmock.NewRepository(t)
	runRepo.On("ListRecent", mock.Anything, maxRunListLimit).Return([]syncrun.Run{{ID: "r"}}, nil).Once()

	svc := NewQueryService(nil, nil, nil, runRepo, nil)
	runs, err := svc.ListSyncRuns(context.Background(), 5000)
	if err != nil {
		t.Fatalf("list sync runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestQueryService_GetSyncRun_WithoutRepository(t *testing.T) {
	t.Parallel()

	svc := NewQueryService(nil, nil, nil, nil, nil)
	if _, err := svc.GetSyncRun(context.Background(), "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
