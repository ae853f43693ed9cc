package usecase

import (
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
)

const weekDays = 7

// GroundViewBuilder derives the weekly ground setup rows.
type GroundViewBuilder struct {
	clubPrefix string
	grounds    map[string]struct{}
}

func NewGroundViewBuilder(clubPrefix string, grounds []string) *GroundViewBuilder {
	set := make(map[string]struct{}, len(grounds))
	for _, g := range grounds {
		set[strings.TrimSpace(g)] = struct{}{}
	}
	return &GroundViewBuilder{clubPrefix: clubPrefix, grounds: set}
}

// Build selects fixtures dated after weekStart and no more than seven days
// later, in date order, and keeps the first fixture per club ground and
// field. Contacts come from the roster entry of the setup team.
func (b *GroundViewBuilder) Build(weekStart time.Time, table fixture.Table, entries []roster.Entry) groundview.View {
	inWeek := make([]fixture.Record, 0, len(table))
	for _, record := range table {
		if record.InWindow(weekStart, weekDays) {
			inWeek = append(inWeek, record)
		}
	}
	slices.SortStableFunc(inWeek, func(a, b fixture.Record) int {
		return a.Date.Compare(b.Date)
	})

	index := roster.Index(entries)
	claimed := make(map[string]struct{})
	rows := make([]groundview.Row, 0)
	for _, record := range inWeek {
		if _, ok := b.grounds[record.Ground]; !ok {
			continue
		}
		key := record.Ground + "|" + record.Field
		if _, ok := claimed[key]; ok {
			continue
		}
		claimed[key] = struct{}{}

		row := groundview.Row{
			Date:      record.Date,
			Ground:    record.Ground,
			Field:     record.Field,
			SetupTeam: b.setupTeam(record),
		}
		if entry, ok := index[row.SetupTeam]; ok {
			row.Contacts = entry.Contacts
			row.ContactsFound = true
		}
		rows = append(rows, row)
	}

	return groundview.View{WeekStart: weekStart, Rows: rows}
}

// setupTeam prefers the home side when it is a club team, then the away
// side, and falls back to home for fixtures between two other clubs.
func (b *GroundViewBuilder) setupTeam(record fixture.Record) string {
	switch {
	case roster.IsClubTeam(record.HomeTeam, b.clubPrefix):
		return record.HomeTeam
	case roster.IsClubTeam(record.AwayTeam, b.clubPrefix):
		return record.AwayTeam
	default:
		return record.HomeTeam
	}
}
