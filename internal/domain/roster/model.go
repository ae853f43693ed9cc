package roster

import "strings"

// Columns is the fixed header of the roster table.
var Columns = []string{"Team", "Coach Contacts", "Manager Contacts", "Player Contacts"}

// Contacts are maintained by hand in the store and never written by a sync.
type Contacts struct {
	Coach   string
	Manager string
	Player  string
}

// Entry is one club team. TeamName is unique within a roster.
type Entry struct {
	TeamName string
	Contacts Contacts
}

// IsClubTeam reports whether a team name belongs to the club.
func IsClubTeam(teamName, clubPrefix string) bool {
	return teamName != "" && strings.HasPrefix(teamName, clubPrefix)
}

// Index maps team names to entries; the first entry wins on duplicates.
func Index(entries []Entry) map[string]Entry {
	out := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, ok := out[e.TeamName]; !ok {
			out[e.TeamName] = e
		}
	}
	return out
}
