package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	qb "github.com/riskibarqy/ground-setup/internal/platform/querybuilder"
)

const syncRunsTable = "sync_runs"

type SyncRunRepository struct {
	db *sqlx.DB
}

func NewSyncRunRepository(db *sqlx.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

func (r *SyncRunRepository) Save(ctx context.Context, run syncrun.Run) error {
	weeks := make([]string, 0, len(run.WeekStarts))
	for _, week := range run.WeekStarts {
		weeks = append(weeks, week.Format(time.RFC3339))
	}

	query, args, err := qb.InsertModels(syncRunsTable, []syncRunModel{{
		ID:            run.ID,
		TriggerSource: run.Trigger,
		Status:        string(run.Status),
		StartedAt:     formatTimestamp(run.StartedAt),
		FinishedAt:    formatTimestamp(run.FinishedAt),
		Fetched:       run.Fetched,
		Updated:       run.Updated,
		Appended:      run.Appended,
		NewTeams:      run.NewTeams,
		WeekStarts:    strings.Join(weeks, ","),
		Message:       run.Message,
	}})
	if err != nil {
		return fmt.Errorf("build insert sync run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert sync run id=%s: %w", run.ID, err)
	}
	return nil
}

func (r *SyncRunRepository) GetByID(ctx context.Context, id string) (syncrun.Run, bool, error) {
	query, args, err := qb.Select(qb.Columns(syncRunModel{})...).
		From(syncRunsTable).
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return syncrun.Run{}, false, fmt.Errorf("build select sync run query: %w", err)
	}

	var row syncRunModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return syncrun.Run{}, false, nil
		}
		return syncrun.Run{}, false, fmt.Errorf("select sync run id=%s: %w", id, err)
	}
	return row.toDomain(), true, nil
}

func (r *SyncRunRepository) ListRecent(ctx context.Context, limit int) ([]syncrun.Run, error) {
	query, args, err := qb.Select(qb.Columns(syncRunModel{})...).
		From(syncRunsTable).
		OrderBy("started_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sync runs query: %w", err)
	}

	var rows []syncRunModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	out := make([]syncrun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (m syncRunModel) toDomain() syncrun.Run {
	run := syncrun.Run{
		ID:         m.ID,
		Trigger:    m.TriggerSource,
		Status:     syncrun.Status(m.Status),
		StartedAt:  parseTimestamp(m.StartedAt),
		FinishedAt: parseTimestamp(m.FinishedAt),
		Fetched:    m.Fetched,
		Updated:    m.Updated,
		Appended:   m.Appended,
		NewTeams:   m.NewTeams,
		Message:    m.Message,
	}
	for _, raw := range strings.Split(m.WeekStarts, ",") {
		if week, err := time.Parse(time.RFC3339, raw); err == nil {
			run.WeekStarts = append(run.WeekStarts, week)
		}
	}
	return run
}
