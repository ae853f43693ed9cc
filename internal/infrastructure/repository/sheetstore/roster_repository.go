package sheetstore

import (
	"context"

	"github.com/riskibarqy/ground-setup/internal/domain/roster"
)

// RosterRepository reads the contact columns that club volunteers maintain
// by hand and writes them back unchanged.
type RosterRepository struct {
	store *Store
}

func (r *RosterRepository) Load(ctx context.Context) ([]roster.Entry, error) {
	title := r.store.cfg.TeamsSheet
	ok, err := r.store.hasSheet(ctx, title)
	if err != nil || !ok {
		return nil, err
	}

	rows, err := r.store.readRows(ctx, title, len(roster.Columns))
	if err != nil {
		return nil, err
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Entry{
			TeamName: row[0],
			Contacts: roster.Contacts{Coach: row[1], Manager: row[2], Player: row[3]},
		})
	}
	return out, nil
}

func (r *RosterRepository) Save(ctx context.Context, entries []roster.Entry) error {
	title := r.store.cfg.TeamsSheet
	if err := r.store.ensureTable(ctx, title, roster.Columns); err != nil {
		return err
	}

	values := make([][]any, 0, len(entries))
	for _, entry := range entries {
		values = append(values, []any{
			entry.TeamName,
			entry.Contacts.Coach,
			entry.Contacts.Manager,
			entry.Contacts.Player,
		})
	}
	return r.store.replaceRows(ctx, title, len(roster.Columns), values)
}
