package sheetstore

import (
	"context"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
)

type FixtureRepository struct {
	store *Store
}

func (r *FixtureRepository) Load(ctx context.Context) (fixture.Table, error) {
	title := r.store.cfg.FixturesSheet
	ok, err := r.store.hasSheet(ctx, title)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := r.store.readRows(ctx, title, len(fixture.Columns))
	if err != nil {
		return nil, err
	}

	out := make(fixture.Table, 0, len(rows))
	for _, row := range rows {
		date, _ := fixture.ParseDateIn(row[2], r.store.cfg.Location)
		out = append(out, fixture.Record{
			FixtureID: row[0],
			MatchID:   row[1],
			Date:      date,
			DateText:  row[2],
			League:    row[3],
			Round:     row[4],
			Status:    row[5],
			Name:      row[6],
			HomeTeam:  row[7],
			AwayTeam:  row[8],
			Ground:    row[9],
			Field:     row[10],
		})
	}
	return out, nil
}

// Save rewrites the table body. Rows kept from Load carry their original
// date text.
func (r *FixtureRepository) Save(ctx context.Context, table fixture.Table) error {
	title := r.store.cfg.FixturesSheet
	if err := r.store.ensureTable(ctx, title, fixture.Columns); err != nil {
		return err
	}

	values := make([][]any, 0, len(table))
	for _, record := range table {
		values = append(values, []any{
			record.FixtureID,
			record.MatchID,
			record.DateCell(),
			record.League,
			record.Round,
			record.Status,
			record.Name,
			record.HomeTeam,
			record.AwayTeam,
			record.Ground,
			record.Field,
		})
	}
	return r.store.replaceRows(ctx, title, len(fixture.Columns), values)
}
