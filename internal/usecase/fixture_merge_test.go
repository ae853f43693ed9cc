package usecase

import (
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
)

func record(id, status string) fixture.Record {
	return fixture.Record{
		FixtureID: id,
		MatchID:   "m-" + id,
		Date:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Status:    status,
		Ground:    "Renown Park",
		Field:     "1",
	}
}

func TestMergeFixtureTable_UpdatesInPlaceAndAppends(t *testing.T) {
	t.Parallel()

	existing := fixture.Table{record("A", "scheduled"), record("B", "scheduled"), record("C", "scheduled")}
	fetched := []fixture.Record{record("D", "scheduled"), record("B", "cancelled")}

	got, stats := MergeFixtureTable(existing, fetched)

	wantIDs := []string{"A", "B", "C", "D"}
	for i, id := range wantIDs {
		if got[i].FixtureID != id {
			t.Fatalf("unexpected row %d: got=%s want=%s", i, got[i].FixtureID, id)
		}
	}
	if got[1].Status != "cancelled" {
		t.Fatalf("expected in-place update of B: got=%q", got[1].Status)
	}
	if stats != (MergeStats{Updated: 1, Kept: 2, Appended: 1}) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if existing[1].Status != "scheduled" {
		t.Fatalf("existing table must not be mutated")
	}
}

func TestMergeFixtureTable_PreservesCardinalityAndUnrelatedRows(t *testing.T) {
	t.Parallel()

	untouched := record("keep", "scheduled")
	untouched.League = "Manual League Note"
	existing := fixture.Table{untouched, record("A", "scheduled")}
	fetched := []fixture.Record{record("A", "played"), record("N1", "scheduled"), record("N2", "scheduled")}

	got, stats := MergeFixtureTable(existing, fetched)
	if len(got) != len(existing)+stats.Appended || stats.Appended != 2 {
		t.Fatalf("unexpected cardinality: rows=%d appended=%d", len(got), stats.Appended)
	}
	if !reflect.DeepEqual(got[0], untouched) {
		t.Fatalf("unrelated row changed: got=%+v want=%+v", got[0], untouched)
	}
}

func TestMergeFixtureTable_Idempotent(t *testing.T) {
	t.Parallel()

	existing := fixture.Table{record("A", "scheduled"), record("Z", "scheduled")}
	fetched := []fixture.Record{record("B", "scheduled"), record("A", "postponed"), record("B", "scheduled")}

	once, _ := MergeFixtureTable(existing, fetched)
	twice, _ := MergeFixtureTable(once, fetched)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent:\nonce=%+v\ntwice=%+v", once, twice)
	}
}

func TestMergeFixtureTable_DuplicateFetchedIDsAppendRemainder(t *testing.T) {
	t.Parallel()

	existing := fixture.Table{record("A", "scheduled")}
	fetched := []fixture.Record{record("A", "first"), record("A", "second")}

	got, stats := MergeFixtureTable(existing, fetched)
	if len(got) != 2 || got[0].Status != "first" || got[1].Status != "second" {
		t.Fatalf("unexpected merge of duplicate ids: %+v", got)
	}
	if stats.Updated != 1 || stats.Appended != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMergeFixtureTable_StatusChangeKeepsPosition(t *testing.T) {
	t.Parallel()

	first, _ := MergeFixtureTable(nil, []fixture.Record{record("X", "scheduled"), record("A", "scheduled")})
	second, _ := MergeFixtureTable(first, []fixture.Record{record("A", "cancelled")})

	if len(second) != len(first) {
		t.Fatalf("row count changed: got=%d want=%d", len(second), len(first))
	}
	if second[1].FixtureID != "A" || second[1].Status != "cancelled" {
		t.Fatalf("unexpected row at original position: %+v", second[1])
	}
}
