package usecase

import (
	"fmt"
	"slices"
	"strings"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// RosterDeriver keeps the club roster in step with the fixtures.
type RosterDeriver struct {
	clubPrefix string
	locale     language.Tag
}

func NewRosterDeriver(clubPrefix, locale string) (*RosterDeriver, error) {
	clubPrefix = strings.TrimSpace(clubPrefix)
	if clubPrefix == "" {
		return nil, fmt.Errorf("%w: club prefix is required", ErrInvalidInput)
	}
	tag := language.English
	if strings.TrimSpace(locale) != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("%w: roster locale %q: %v", ErrInvalidInput, locale, err)
		}
		tag = parsed
	}
	return &RosterDeriver{clubPrefix: clubPrefix, locale: tag}, nil
}

// DeriveAndMerge adds every club team found in records that the roster does
// not list yet, with empty contacts, and returns the roster sorted by team
// name together with the names it added. Existing entries are never removed
// and their contacts are carried over verbatim.
func (d *RosterDeriver) DeriveAndMerge(existing []roster.Entry, records []fixture.Record) ([]roster.Entry, []string) {
	known := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		known[e.TeamName] = struct{}{}
	}

	var added []string
	for _, record := range records {
		for _, name := range record.Teams() {
			if !roster.IsClubTeam(name, d.clubPrefix) {
				continue
			}
			if _, ok := known[name]; ok {
				continue
			}
			known[name] = struct{}{}
			added = append(added, name)
		}
	}

	out := make([]roster.Entry, 0, len(existing)+len(added))
	out = append(out, existing...)
	for _, name := range added {
		out = append(out, roster.Entry{TeamName: name})
	}

	d.sort(out)
	return out, added
}

func (d *RosterDeriver) sort(entries []roster.Entry) {
	// Collators are not safe for concurrent use.
	collator := collate.New(d.locale)
	slices.SortStableFunc(entries, func(a, b roster.Entry) int {
		return collator.CompareString(a.TeamName, b.TeamName)
	})
}

// IsSorted reports whether entries are in the deriver's team name order.
func (d *RosterDeriver) IsSorted(entries []roster.Entry) bool {
	collator := collate.New(d.locale)
	return slices.IsSortedFunc(entries, func(a, b roster.Entry) int {
		return collator.CompareString(a.TeamName, b.TeamName)
	})
}
