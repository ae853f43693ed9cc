package httpapi

import (
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
)

type fixtureDTO struct {
	FixtureID string `json:"fixtureId"`
	MatchID   string `json:"matchId"`
	Date      string `json:"date"`
	League    string `json:"league"`
	Round     string `json:"round"`
	Status    string `json:"status"`
	Name      string `json:"name"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	Ground    string `json:"ground"`
	Field     string `json:"field"`
}

type teamDTO struct {
	Team            string `json:"team"`
	CoachContacts   string `json:"coachContacts"`
	ManagerContacts string `json:"managerContacts"`
	PlayerContacts  string `json:"playerContacts"`
}

type weekSummaryDTO struct {
	WeekStart string `json:"weekStart"`
	Name      string `json:"name"`
}

type weekRowDTO struct {
	Date            string `json:"date"`
	Ground          string `json:"ground"`
	Field           string `json:"field"`
	Team            string `json:"team"`
	CoachContacts   string `json:"coachContacts"`
	ManagerContacts string `json:"managerContacts"`
	PlayerContacts  string `json:"playerContacts"`
	ContactsFound   bool   `json:"contactsFound"`
}

type weekViewDTO struct {
	WeekStart string       `json:"weekStart"`
	Name      string       `json:"name"`
	Rows      []weekRowDTO `json:"rows"`
}

type syncRunDTO struct {
	ID         string   `json:"id"`
	Trigger    string   `json:"trigger"`
	Status     string   `json:"status"`
	StartedAt  string   `json:"startedAt"`
	FinishedAt string   `json:"finishedAt"`
	DurationMS int64    `json:"durationMs"`
	Fetched    int      `json:"fetched"`
	Updated    int      `json:"updated"`
	Appended   int      `json:"appended"`
	NewTeams   int      `json:"newTeams"`
	WeekStarts []string `json:"weekStarts"`
	Message    string   `json:"message,omitempty"`
}

func formatLocalDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.RFC3339)
}

func toFixtureDTOs(table fixture.Table, loc *time.Location) []fixtureDTO {
	out := make([]fixtureDTO, 0, len(table))
	for _, record := range table {
		out = append(out, fixtureDTO{
			FixtureID: record.FixtureID,
			MatchID:   record.MatchID,
			Date:      formatLocalDate(record.Date, loc),
			League:    record.League,
			Round:     record.Round,
			Status:    record.Status,
			Name:      record.Name,
			HomeTeam:  record.HomeTeam,
			AwayTeam:  record.AwayTeam,
			Ground:    record.Ground,
			Field:     record.Field,
		})
	}
	return out
}

func toTeamDTOs(entries []roster.Entry) []teamDTO {
	out := make([]teamDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, teamDTO{
			Team:            entry.TeamName,
			CoachContacts:   entry.Contacts.Coach,
			ManagerContacts: entry.Contacts.Manager,
			PlayerContacts:  entry.Contacts.Player,
		})
	}
	return out
}

func toWeekSummaryDTOs(weeks []time.Time) []weekSummaryDTO {
	out := make([]weekSummaryDTO, 0, len(weeks))
	for _, week := range weeks {
		out = append(out, weekSummaryDTO{
			WeekStart: groundview.WeekKey(week),
			Name:      groundview.ViewName(week),
		})
	}
	return out
}

func toWeekViewDTO(view groundview.View, loc *time.Location) weekViewDTO {
	out := weekViewDTO{
		WeekStart: groundview.WeekKey(view.WeekStart),
		Name:      groundview.ViewName(view.WeekStart),
		Rows:      make([]weekRowDTO, 0, len(view.Rows)),
	}
	for _, row := range view.Rows {
		out.Rows = append(out.Rows, weekRowDTO{
			Date:            formatLocalDate(row.Date, loc),
			Ground:          row.Ground,
			Field:           row.Field,
			Team:            row.SetupTeam,
			CoachContacts:   row.Contacts.Coach,
			ManagerContacts: row.Contacts.Manager,
			PlayerContacts:  row.Contacts.Player,
			ContactsFound:   row.ContactsFound,
		})
	}
	return out
}

func toSyncRunDTO(run syncrun.Run) syncRunDTO {
	out := syncRunDTO{
		ID:         run.ID,
		Trigger:    run.Trigger,
		Status:     string(run.Status),
		StartedAt:  run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: run.FinishedAt.UTC().Format(time.RFC3339),
		DurationMS: run.Duration().Milliseconds(),
		Fetched:    run.Fetched,
		Updated:    run.Updated,
		Appended:   run.Appended,
		NewTeams:   run.NewTeams,
		WeekStarts: make([]string, 0, len(run.WeekStarts)),
		Message:    run.Message,
	}
	for _, week := range run.WeekStarts {
		out.WeekStarts = append(out.WeekStarts, groundview.WeekKey(week))
	}
	return out
}
