package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	"github.com/riskibarqy/ground-setup/internal/usecase"
)

func TestObserveSync(t *testing.T) {
	t.Parallel()

	reg := New()
	started := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	reg.ObserveSync(usecase.SyncResult{
		Trigger:     usecase.TriggerSchedule,
		Status:      syncrun.StatusSuccess,
		Fetched:     12,
		FixtureRows: 40,
		RosterSize:  9,
		WeekStarts:  []string{"2024-04-29", "2024-05-06"},
		StartedAt:   started,
		FinishedAt:  started.Add(3 * time.Second),
	})
	reg.ObserveSync(usecase.SyncResult{
		Trigger: usecase.TriggerSchedule,
		Status:  syncrun.StatusEmptyResult,
		Fetched: 0,
	})

	if got := testutil.ToFloat64(reg.SyncRunsTotal.WithLabelValues("schedule", "success")); got != 1 {
		t.Fatalf("unexpected success count: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(reg.SyncRunsTotal.WithLabelValues("schedule", "empty_result")); got != 1 {
		t.Fatalf("unexpected empty count: got=%v want=1", got)
	}
	if got := testutil.ToFloat64(reg.FixtureRows); got != 40 {
		t.Fatalf("unexpected fixture rows: got=%v want=40", got)
	}
	if got := testutil.ToFloat64(reg.WeekViewsRebuilt); got != 2 {
		t.Fatalf("unexpected week views: got=%v want=2", got)
	}
	if got := testutil.ToFloat64(reg.FixturesFetched); got != 12 {
		t.Fatalf("unexpected fetched: got=%v want=12", got)
	}
}

func TestHandlerExposesHTTPMetrics(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.ObserveHTTPRequest("GET /v1/fixtures", "GET", 200, 15*time.Millisecond)

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `ground_setup_http_requests_total{method="GET",route="GET /v1/fixtures",status_code="200"} 1`) {
		t.Fatalf("metrics output missing request counter:\n%s", body)
	}
}
