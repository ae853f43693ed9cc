package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
)

const testClub = "Oatley Football Club"

func newTestDeriver(t *testing.T) *RosterDeriver {
	t.Helper()
	d, err := NewRosterDeriver(testClub, "en")
	if err != nil {
		t.Fatalf("new roster deriver: %v", err)
	}
	return d
}

func TestRosterDeriver_AddsNewClubTeamsSorted(t *testing.T) {
	t.Parallel()

	existing := []roster.Entry{
		{TeamName: "Oatley Football Club U12", Contacts: roster.Contacts{Coach: "Sam 0400 000 000"}},
	}
	records := []fixture.Record{
		{HomeTeam: "Oatley Football Club U10", AwayTeam: "Other FC U10"},
		{HomeTeam: "Other FC U12", AwayTeam: "Oatley Football Club U12"},
		{HomeTeam: "Oatley Football Club U11", AwayTeam: "Oatley Football Club U10"},
	}

	got, added := newTestDeriver(t).DeriveAndMerge(existing, records)

	wantNames := []string{"Oatley Football Club U10", "Oatley Football Club U11", "Oatley Football Club U12"}
	if len(got) != len(wantNames) {
		t.Fatalf("unexpected roster size: got=%d want=%d", len(got), len(wantNames))
	}
	for i, name := range wantNames {
		if got[i].TeamName != name {
			t.Fatalf("unexpected roster order at %d: got=%s want=%s", i, got[i].TeamName, name)
		}
	}
	if got[2].Contacts.Coach != "Sam 0400 000 000" {
		t.Fatalf("existing contacts lost: %+v", got[2])
	}
	if len(added) != 2 || added[0] != "Oatley Football Club U10" {
		t.Fatalf("unexpected added names: %v", added)
	}
}

func TestRosterDeriver_NeverRemovesOrDuplicates(t *testing.T) {
	t.Parallel()

	d := newTestDeriver(t)
	existing := []roster.Entry{
		{TeamName: "Oatley Football Club Retired Side", Contacts: roster.Contacts{Manager: "keep me"}},
	}

	first, _ := d.DeriveAndMerge(existing, []fixture.Record{{HomeTeam: "Oatley Football Club U9"}})
	second, added := d.DeriveAndMerge(first, []fixture.Record{{HomeTeam: "Oatley Football Club U9"}})

	if len(second) < len(existing) || len(second) != 2 {
		t.Fatalf("unexpected roster size: got=%d", len(second))
	}
	if len(added) != 0 {
		t.Fatalf("known team re-added: %v", added)
	}
	if !d.IsSorted(second) {
		t.Fatalf("roster not sorted: %+v", second)
	}
	for _, e := range second {
		if e.TeamName == "Oatley Football Club Retired Side" && e.Contacts.Manager != "keep me" {
			t.Fatalf("contacts cleared for %s", e.TeamName)
		}
	}
}

func TestRosterDeriver_LocaleAwareOrdering(t *testing.T) {
	t.Parallel()

	d, err := NewRosterDeriver("Club", "en")
	if err != nil {
		t.Fatalf("new roster deriver: %v", err)
	}
	got, _ := d.DeriveAndMerge(nil, []fixture.Record{
		{HomeTeam: "Club b", AwayTeam: "Club C"},
		{HomeTeam: "Club a"},
	})
	// Byte order would put "Club C" first.
	want := []string{"Club a", "Club b", "Club C"}
	for i, name := range want {
		if got[i].TeamName != name {
			t.Fatalf("unexpected order: got=%v", got)
		}
	}
}

func TestNewRosterDeriver_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewRosterDeriver("  ", "en"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty prefix, got %v", err)
	}
	if _, err := NewRosterDeriver(testClub, "not a locale!"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad locale, got %v", err)
	}
}
