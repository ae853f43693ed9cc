package groundview

import (
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/roster"
)

// Columns is the fixed header of every weekly ground view.
var Columns = []string{
	"Date", "Ground", "Field", "Team",
	"Coach Contacts", "Manager Contacts", "Player Contacts",
}

// Row assigns ground setup for one ground and field in a week.
// ContactsFound is false when SetupTeam has no roster entry.
type Row struct {
	Date          time.Time
	Ground        string
	Field         string
	SetupTeam     string
	Contacts      roster.Contacts
	ContactsFound bool
}

// View is the full derived row set of one week. It is replaced wholesale.
type View struct {
	WeekStart time.Time
	Rows      []Row
}

// ViewName names a week view after its start date, e.g. "Week May 6".
func ViewName(weekStart time.Time) string {
	return "Week " + weekStart.Format("Jan 2")
}

// WeekKeyLayout identifies weeks in URLs and SQL rows.
const WeekKeyLayout = time.DateOnly

func WeekKey(weekStart time.Time) string {
	return weekStart.Format(WeekKeyLayout)
}
