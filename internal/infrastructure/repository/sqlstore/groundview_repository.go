package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	qb "github.com/riskibarqy/ground-setup/internal/platform/querybuilder"
)

const (
	groundViewsTable    = "ground_views"
	groundViewRowsTable = "ground_view_rows"
)

// GroundViewRepository stores week starts as YYYY-MM-DD keys and reads them
// back as midnight in location.
type GroundViewRepository struct {
	db       *sqlx.DB
	location *time.Location
	now      func() time.Time
}

func NewGroundViewRepository(db *sqlx.DB, location *time.Location) *GroundViewRepository {
	if location == nil {
		location = time.UTC
	}
	return &GroundViewRepository{db: db, location: location, now: time.Now}
}

func (r *GroundViewRepository) ReplaceWeek(ctx context.Context, view groundview.View) error {
	key := groundview.WeekKey(view.WeekStart)
	rows := make([]groundViewRowModel, 0, len(view.Rows))
	for i, row := range view.Rows {
		rows = append(rows, groundViewRowModel{
			WeekStart:       key,
			Position:        i,
			MatchDate:       fixture.FormatDate(row.Date),
			Ground:          row.Ground,
			Field:           row.Field,
			SetupTeam:       row.SetupTeam,
			CoachContacts:   nullString(row.Contacts.Coach, row.ContactsFound),
			ManagerContacts: nullString(row.Contacts.Manager, row.ContactsFound),
			PlayerContacts:  nullString(row.Contacts.Player, row.ContactsFound),
		})
	}

	header := []groundViewModel{{
		WeekStart: key,
		Name:      groundview.ViewName(view.WeekStart),
		RebuiltAt: formatTimestamp(r.now()),
	}}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := deleteWhere(ctx, tx, groundViewRowsTable, qb.Eq("week_start", key)); err != nil {
			return err
		}
		if err := deleteWhere(ctx, tx, groundViewsTable, qb.Eq("week_start", key)); err != nil {
			return err
		}
		if err := insertChunked(ctx, tx, groundViewsTable, header); err != nil {
			return err
		}
		return insertChunked(ctx, tx, groundViewRowsTable, rows)
	})
}

func (r *GroundViewRepository) GetWeek(ctx context.Context, weekStart time.Time) (groundview.View, bool, error) {
	key := groundview.WeekKey(weekStart)

	query, args, err := qb.Select(qb.Columns(groundViewModel{})...).
		From(groundViewsTable).
		Where(qb.Eq("week_start", key)).
		Limit(1).
		ToSQL()
	if err != nil {
		return groundview.View{}, false, fmt.Errorf("build select ground view query: %w", err)
	}

	var header groundViewModel
	if err := r.db.GetContext(ctx, &header, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return groundview.View{}, false, nil
		}
		return groundview.View{}, false, fmt.Errorf("select ground view week=%s: %w", key, err)
	}

	query, args, err = qb.Select(qb.Columns(groundViewRowModel{})...).
		From(groundViewRowsTable).
		Where(qb.Eq("week_start", key)).
		OrderBy("position").
		ToSQL()
	if err != nil {
		return groundview.View{}, false, fmt.Errorf("build select ground view rows query: %w", err)
	}

	var rows []groundViewRowModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return groundview.View{}, false, fmt.Errorf("select ground view rows week=%s: %w", key, err)
	}

	start, err := time.ParseInLocation(groundview.WeekKeyLayout, header.WeekStart, r.location)
	if err != nil {
		return groundview.View{}, false, fmt.Errorf("parse week start %q: %w", header.WeekStart, err)
	}

	view := groundview.View{WeekStart: start, Rows: make([]groundview.Row, 0, len(rows))}
	for _, row := range rows {
		date, _ := fixture.ParseDate(row.MatchDate)
		view.Rows = append(view.Rows, groundview.Row{
			Date:      date,
			Ground:    row.Ground,
			Field:     row.Field,
			SetupTeam: row.SetupTeam,
			Contacts: roster.Contacts{
				Coach:   row.CoachContacts.String,
				Manager: row.ManagerContacts.String,
				Player:  row.PlayerContacts.String,
			},
			ContactsFound: row.CoachContacts.Valid,
		})
	}
	return view, true, nil
}

func (r *GroundViewRepository) ListWeeks(ctx context.Context) ([]time.Time, error) {
	query, args, err := qb.Select("week_start").
		From(groundViewsTable).
		OrderBy("week_start").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ground views query: %w", err)
	}

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list ground views: %w", err)
	}

	out := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		start, err := time.ParseInLocation(groundview.WeekKeyLayout, key, r.location)
		if err != nil {
			return nil, fmt.Errorf("parse week start %q: %w", key, err)
		}
		out = append(out, start)
	}
	return out, nil
}
