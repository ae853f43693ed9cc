package syncrun

import "time"

type Status string

const (
	StatusSuccess     Status = "success"
	StatusEmptyResult Status = "empty_result"
	StatusFailed      Status = "failed"
)

// Run records the outcome of one sync.
type Run struct {
	ID         string
	Trigger    string
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Updated    int
	Appended   int
	NewTeams   int
	WeekStarts []time.Time
	Message    string
}

func (r Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
