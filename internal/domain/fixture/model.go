package fixture

import (
	"strings"
	"time"
)

// Columns is the fixed header of the persisted fixture table.
var Columns = []string{
	"Fixture ID", "Match ID", "Date", "League", "Round", "Status",
	"Name", "Home Team", "Away Team", "Ground", "Field",
}

// Record is one scheduled match as published by the fixture source.
// FixtureID is stable across syncs; every other field may change.
type Record struct {
	FixtureID string
	MatchID   string
	Date      time.Time
	League    string
	Round     string
	Status    string
	Name      string
	HomeTeam  string
	AwayTeam  string
	Ground    string
	Field     string

	// DateText is the date cell as a text store held it; empty for fetched
	// records. Rows loaded with it are written back with the same text.
	DateText string
}

// DateCell is the text stored for the date: DateText when the record was
// loaded with one, the formatted Date otherwise.
func (r Record) DateCell() string {
	if r.DateText != "" {
		return r.DateText
	}
	return FormatDate(r.Date)
}

// HasDate reports whether the source date could be parsed.
func (r Record) HasDate() bool {
	return !r.Date.IsZero()
}

// InWindow reports whether the record falls after start and no more than
// days later. A record dated exactly at start is outside the window.
func (r Record) InWindow(start time.Time, days int) bool {
	if !r.HasDate() {
		return false
	}
	offset := r.Date.Sub(start)
	return offset > 0 && offset <= time.Duration(days)*24*time.Hour
}

// Teams returns the home and away team names.
func (r Record) Teams() []string {
	return []string{r.HomeTeam, r.AwayTeam}
}

// Table is the persisted fixture table in row order. Existing rows keep
// their position across syncs; new rows are only ever appended.
type Table []Record

func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	return append(Table(nil), t...)
}

// DateLayout is how fixture dates are written to tabular stores.
const DateLayout = time.RFC3339

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ParseDate accepts RFC3339 with or without fractional seconds. An empty or
// malformed value yields the zero time.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// localDateLayouts cover dates typed into a spreadsheet by hand or shown in
// its default display format. Numeric dates are day first.
var localDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
}

// ParseDateIn accepts everything ParseDate does plus the zone-less layouts
// people type into a sheet, read as local time in loc.
func ParseDateIn(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, ok := ParseDate(value); ok {
		return t, true
	}
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
