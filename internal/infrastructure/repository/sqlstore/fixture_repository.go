package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	qb "github.com/riskibarqy/ground-setup/internal/platform/querybuilder"
)

const fixturesTable = "fixtures"

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) Load(ctx context.Context) (fixture.Table, error) {
	query, args, err := qb.Select(qb.Columns(fixtureTableModel{})...).
		From(fixturesTable).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make(fixture.Table, 0, len(rows))
	for _, row := range rows {
		date, _ := fixture.ParseDate(row.MatchDate)
		out = append(out, fixture.Record{
			FixtureID: row.FixtureID,
			MatchID:   row.MatchID,
			Date:      date,
			League:    row.League,
			Round:     row.Round,
			Status:    row.Status,
			Name:      row.Name,
			HomeTeam:  row.HomeTeam,
			AwayTeam:  row.AwayTeam,
			Ground:    row.Ground,
			Field:     row.Field,
		})
	}
	return out, nil
}

// Save replaces the whole table in one transaction, keeping row order in
// the position column.
func (r *FixtureRepository) Save(ctx context.Context, table fixture.Table) error {
	rows := make([]fixtureTableModel, 0, len(table))
	for i, record := range table {
		rows = append(rows, fixtureTableModel{
			Position:  i,
			FixtureID: record.FixtureID,
			MatchID:   record.MatchID,
			MatchDate: fixture.FormatDate(record.Date),
			League:    record.League,
			Round:     record.Round,
			Status:    record.Status,
			Name:      record.Name,
			HomeTeam:  record.HomeTeam,
			AwayTeam:  record.AwayTeam,
			Ground:    record.Ground,
			Field:     record.Field,
		})
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := deleteWhere(ctx, tx, fixturesTable); err != nil {
			return err
		}
		return insertChunked(ctx, tx, fixturesTable, rows)
	})
}
