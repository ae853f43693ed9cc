package fixture

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	got, ok := ParseDate("2024-05-04T08:30:00.000000Z")
	if !ok {
		t.Fatalf("expected fractional RFC3339 to parse")
	}
	want := time.Date(2024, 5, 4, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date: got=%s want=%s", got, want)
	}

	if _, ok := ParseDate("04/05/2024"); ok {
		t.Fatalf("expected non RFC3339 value to be rejected")
	}
	if FormatDate(time.Time{}) != "" {
		t.Fatalf("zero date must format as empty")
	}
	if FormatDate(want) != "2024-05-04T08:30:00Z" {
		t.Fatalf("unexpected format: %s", FormatDate(want))
	}
}

func TestRecordInWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	inside := []time.Time{start.Add(time.Minute), start.AddDate(0, 0, 7)}
	outside := []time.Time{start, start.Add(7*24*time.Hour + time.Second)}
	for _, date := range inside {
		if !(Record{Date: date}).InWindow(start, 7) {
			t.Fatalf("expected %s inside the window", date)
		}
	}
	for _, date := range outside {
		if (Record{Date: date}).InWindow(start, 7) {
			t.Fatalf("expected %s outside the window", date)
		}
	}
	if (Record{}).InWindow(start, 7) {
		t.Fatalf("undated record must be outside every window")
	}
}

func TestParseDateIn(t *testing.T) {
	t.Parallel()

	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	cases := map[string]time.Time{
		"2024-05-04T08:30:00Z": time.Date(2024, 5, 4, 8, 30, 0, 0, time.UTC),
		"4/05/2024 8:30:00":    time.Date(2024, 5, 4, 8, 30, 0, 0, sydney),
		"2024-05-04 08:30":     time.Date(2024, 5, 4, 8, 30, 0, 0, sydney),
		"04/05/2024":           time.Date(2024, 5, 4, 0, 0, 0, 0, sydney),
	}
	for raw, want := range cases {
		got, ok := ParseDateIn(raw, sydney)
		if !ok || !got.Equal(want) {
			t.Fatalf("unexpected date for %q: got=%s ok=%v want=%s", raw, got, ok, want)
		}
	}
	if _, ok := ParseDateIn("TBC", sydney); ok {
		t.Fatalf("expected free text to be rejected")
	}
}

func TestRecordDateCell(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2024, 5, 4, 8, 30, 0, 0, time.UTC)
	if got := (Record{Date: kickoff}).DateCell(); got != "2024-05-04T08:30:00Z" {
		t.Fatalf("unexpected cell: got=%s want=2024-05-04T08:30:00Z", got)
	}
	if got := (Record{Date: kickoff, DateText: "4/05/2024 6:30:00 PM"}).DateCell(); got != "4/05/2024 6:30:00 PM" {
		t.Fatalf("unexpected cell: got=%s want=loaded text", got)
	}
}
