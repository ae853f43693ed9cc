package sheetstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
)

const (
	viewNamePrefix = "Week "
	// firstContactColumn is the zero-based index of the Coach column.
	firstContactColumn = 4
)

// GroundViewRepository writes one sheet per week named by groundview.ViewName.
// Sheet names carry no year, so ListWeeks resolves each name to the date
// closest to now.
type GroundViewRepository struct {
	store *Store
}

func (r *GroundViewRepository) ReplaceWeek(ctx context.Context, view groundview.View) error {
	title := groundview.ViewName(view.WeekStart)
	exists, err := r.store.hasSheet(ctx, title)
	if err != nil {
		return err
	}
	if exists {
		err = r.store.clearRange(ctx, quoteSheet(title))
	} else {
		err = r.store.addSheet(ctx, title, true)
	}
	if err != nil {
		return err
	}

	values := make([][]any, 0, len(view.Rows)+1)
	values = append(values, stringRow(groundview.Columns))
	for _, row := range view.Rows {
		values = append(values, []any{
			fixture.FormatDate(row.Date), row.Ground, row.Field, row.SetupTeam,
			row.Contacts.Coach, row.Contacts.Manager, row.Contacts.Player,
		})
	}
	if !r.store.cfg.ContactFormulas {
		return r.store.writeValues(ctx, a1(title, "A1"), values, valueInputRaw)
	}

	// Only the contact formulas are user entered; the other cells stay text.
	fixed := make([][]any, len(values))
	formulas := make([][]any, len(values))
	for i, row := range values {
		fixed[i] = row[:firstContactColumn]
		if i == 0 {
			formulas[i] = row[firstContactColumn:]
			continue
		}
		formulas[i] = r.contactFormulas(i + 1)
	}
	if err := r.store.writeValues(ctx, a1(title, "A1"), fixed, valueInputRaw); err != nil {
		return err
	}
	return r.store.writeValues(ctx, a1(title, columnName(firstContactColumn+1)+"1"), formulas, valueInputUserEntered)
}

// contactFormulas look the team in column D up in the roster sheet. A team
// without a roster entry shows blank contacts.
func (r *GroundViewRepository) contactFormulas(sheetRow int) []any {
	lookupRange := quoteSheet(r.store.cfg.TeamsSheet) + "!$A$2:$" + columnName(len(roster.Columns))
	out := make([]any, 0, len(roster.Columns)-1)
	for col := 2; col <= len(roster.Columns); col++ {
		out = append(out, fmt.Sprintf(`=IFERROR(VLOOKUP(D%d,%s,%d,FALSE),"")`, sheetRow, lookupRange, col))
	}
	return out
}

func (r *GroundViewRepository) GetWeek(ctx context.Context, weekStart time.Time) (groundview.View, bool, error) {
	title := groundview.ViewName(weekStart)
	ok, err := r.store.hasSheet(ctx, title)
	if err != nil || !ok {
		return groundview.View{}, false, err
	}

	rows, err := r.store.readRows(ctx, title, len(groundview.Columns))
	if err != nil {
		return groundview.View{}, false, err
	}
	entries, err := r.store.Roster().Load(ctx)
	if err != nil {
		return groundview.View{}, false, err
	}
	index := roster.Index(entries)

	view := groundview.View{WeekStart: weekStart, Rows: make([]groundview.Row, 0, len(rows))}
	for _, row := range rows {
		date, _ := fixture.ParseDateIn(row[0], r.store.cfg.Location)
		_, found := index[row[3]]
		view.Rows = append(view.Rows, groundview.Row{
			Date:          date,
			Ground:        row[1],
			Field:         row[2],
			SetupTeam:     row[3],
			Contacts:      roster.Contacts{Coach: row[4], Manager: row[5], Player: row[6]},
			ContactsFound: found,
		})
	}
	return view, true, nil
}

func (r *GroundViewRepository) ListWeeks(ctx context.Context) ([]time.Time, error) {
	titles, err := r.store.sheetTitles(ctx)
	if err != nil {
		return nil, err
	}

	now := r.store.now().In(r.store.cfg.Location)
	out := make([]time.Time, 0, len(titles))
	for title := range titles {
		week, ok := parseViewName(title, now)
		if ok {
			out = append(out, week)
		}
	}
	slices.SortFunc(out, time.Time.Compare)
	return out, nil
}

// parseViewName reverses groundview.ViewName, picking the year that puts the
// date nearest to now.
func parseViewName(title string, now time.Time) (time.Time, bool) {
	rest, ok := strings.CutPrefix(title, viewNamePrefix)
	if !ok {
		return time.Time{}, false
	}
	monthDay, err := time.Parse("Jan 2", rest)
	if err != nil {
		return time.Time{}, false
	}

	var best time.Time
	for year := now.Year() - 1; year <= now.Year()+1; year++ {
		candidate := time.Date(year, monthDay.Month(), monthDay.Day(), 0, 0, 0, 0, now.Location())
		if candidate.Month() != monthDay.Month() {
			continue
		}
		if best.IsZero() || absDuration(candidate.Sub(now)) < absDuration(best.Sub(now)) {
			best = candidate
		}
	}
	return best, !best.IsZero()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
