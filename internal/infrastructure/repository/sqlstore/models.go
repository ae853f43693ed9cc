package sqlstore

import "database/sql"

type fixtureTableModel struct {
	Position  int    `db:"position"`
	FixtureID string `db:"fixture_id"`
	MatchID   string `db:"match_id"`
	MatchDate string `db:"match_date"`
	League    string `db:"league"`
	Round     string `db:"round"`
	Status    string `db:"status"`
	Name      string `db:"name"`
	HomeTeam  string `db:"home_team"`
	AwayTeam  string `db:"away_team"`
	Ground    string `db:"ground"`
	Field     string `db:"field"`
}

type rosterTableModel struct {
	Position        int    `db:"position"`
	TeamName        string `db:"team_name"`
	CoachContacts   string `db:"coach_contacts"`
	ManagerContacts string `db:"manager_contacts"`
	PlayerContacts  string `db:"player_contacts"`
}

type groundViewModel struct {
	WeekStart string `db:"week_start"`
	Name      string `db:"name"`
	RebuiltAt string `db:"rebuilt_at"`
}

// groundViewRowModel leaves contacts NULL when the setup team has no roster
// entry.
type groundViewRowModel struct {
	WeekStart       string         `db:"week_start"`
	Position        int            `db:"position"`
	MatchDate       string         `db:"match_date"`
	Ground          string         `db:"ground"`
	Field           string         `db:"field"`
	SetupTeam       string         `db:"setup_team"`
	CoachContacts   sql.NullString `db:"coach_contacts"`
	ManagerContacts sql.NullString `db:"manager_contacts"`
	PlayerContacts  sql.NullString `db:"player_contacts"`
}

type syncRunModel struct {
	ID            string `db:"id"`
	TriggerSource string `db:"trigger_source"`
	Status        string `db:"status"`
	StartedAt     string `db:"started_at"`
	FinishedAt    string `db:"finished_at"`
	Fetched       int    `db:"fetched"`
	Updated       int    `db:"updated"`
	Appended      int    `db:"appended"`
	NewTeams      int    `db:"new_teams"`
	WeekStarts    string `db:"week_starts"`
	Message       string `db:"message"`
}
