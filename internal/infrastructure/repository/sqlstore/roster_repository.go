package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	qb "github.com/riskibarqy/ground-setup/internal/platform/querybuilder"
)

const rosterTable = "team_rosters"

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) Load(ctx context.Context) ([]roster.Entry, error) {
	query, args, err := qb.Select(qb.Columns(rosterTableModel{})...).
		From(rosterTable).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select roster: %w", err)
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Entry{
			TeamName: row.TeamName,
			Contacts: roster.Contacts{
				Coach:   row.CoachContacts,
				Manager: row.ManagerContacts,
				Player:  row.PlayerContacts,
			},
		})
	}
	return out, nil
}

func (r *RosterRepository) Save(ctx context.Context, entries []roster.Entry) error {
	rows := make([]rosterTableModel, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, rosterTableModel{
			Position:        i,
			TeamName:        entry.TeamName,
			CoachContacts:   entry.Contacts.Coach,
			ManagerContacts: entry.Contacts.Manager,
			PlayerContacts:  entry.Contacts.Player,
		})
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := deleteWhere(ctx, tx, rosterTable); err != nil {
			return err
		}
		return insertChunked(ctx, tx, rosterTable, rows)
	})
}
