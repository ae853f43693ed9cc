package dribl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/platform/resilience"
	"github.com/riskibarqy/ground-setup/internal/usecase"
)

const firstPage = `{
  "data": [
    {
      "hash_id": "fx-1",
      "attributes": {
        "date": "2024-05-04T08:30:00.000000Z",
        "league_name": "U10 Division 2",
        "round": 3,
        "status": "pending",
        "name": "Round 3",
        "home_team_name": "Oatley Football Club U10",
        "away_team_name": "Other FC U10",
        "ground_name": "Renown Park",
        "field_name": "1",
        "match_hash_id": "m-1"
      }
    },
    {
      "hash_id": "fx-2",
      "attributes": {"date": "TBC", "home_team_name": null, "field_name": 2}
    }
  ],
  "meta": {"next_cursor": "abc123"}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker resilience.CircuitBreakerConfig) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:        server.URL + "/api/",
		Season:         "3pmvvPRmvJ",
		Competition:    "3pmvZw6mvJ",
		Club:           "wxNx5LOKkp",
		Tenant:         "b6lNb6NxE2",
		Timeout:        2 * time.Second,
		CircuitBreaker: breaker,
	})
}

func TestClient_FetchFixturePage_DecodesRecords(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(firstPage))
	}, resilience.CircuitBreakerConfig{})

	page, err := client.FetchFixturePage(context.Background(), "")
	if err != nil {
		t.Fatalf("fetch fixture page: %v", err)
	}

	if gotPath != "/api/fixtures" {
		t.Fatalf("unexpected path: got=%q", gotPath)
	}
	for _, want := range []string{"date_range=default", "season=3pmvvPRmvJ", "competition=3pmvZw6mvJ", "club=wxNx5LOKkp", "tenant=b6lNb6NxE2"} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q missing %q", gotQuery, want)
		}
	}
	if strings.Contains(gotQuery, "cursor") {
		t.Fatalf("first page must not send a cursor, query=%q", gotQuery)
	}

	if page.NextCursor != "abc123" {
		t.Fatalf("unexpected cursor: got=%q want=%q", page.NextCursor, "abc123")
	}
	if len(page.Fixtures) != 2 {
		t.Fatalf("unexpected fixture count: got=%d want=2", len(page.Fixtures))
	}

	first := page.Fixtures[0]
	if first.FixtureID != "fx-1" || first.MatchID != "m-1" || first.Round != "3" || first.Ground != "Renown Park" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if want := time.Date(2024, 5, 4, 8, 30, 0, 0, time.UTC); !first.Date.Equal(want) {
		t.Fatalf("unexpected date: got=%s want=%s", first.Date, want)
	}

	second := page.Fixtures[1]
	if second.HasDate() || second.HomeTeam != "" || second.Field != "2" {
		t.Fatalf("unexpected lenient decode: %+v", second)
	}
}

func TestClient_FetchFixturePage_PassesCursorAndEndsWithoutNext(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cursor"); got != "abc123" {
			t.Errorf("unexpected cursor: got=%q", got)
		}
		_, _ = w.Write([]byte(`{"data": [], "meta": {"next_cursor": null}}`))
	}, resilience.CircuitBreakerConfig{})

	page, err := client.FetchFixturePage(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("fetch fixture page: %v", err)
	}
	if page.NextCursor != "" || len(page.Fixtures) != 0 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestClient_FetchFixturePage_Errors(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "bad-json" {
			_, _ = w.Write([]byte(`{"data": [`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"tenant mismatch"}`))
	}, resilience.CircuitBreakerConfig{})

	_, err := client.FetchFixturePage(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "status=403") {
		t.Fatalf("expected status error, got %v", err)
	}
	if isDriblCircuitFailure(err) {
		t.Fatalf("client errors must not count against the circuit")
	}

	_, err = client.FetchFixturePage(context.Background(), "bad-json")
	if err == nil || !strings.Contains(err.Error(), "decode fixture page") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClient_CircuitOpensOnRepeatedServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchFixturePage(context.Background(), ""); err == nil {
			t.Fatalf("expected upstream error on attempt %d", i+1)
		}
	}

	_, err := client.FetchFixturePage(context.Background(), "")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once open, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("unexpected upstream hits: got=%d want=2", got)
	}
}

func TestParseProviderDate(t *testing.T) {
	t.Parallel()

	if _, ok := parseProviderDate("2024-05-04 08:30:00"); !ok {
		t.Fatalf("expected space separated layout to parse")
	}
	if _, ok := parseProviderDate(""); ok {
		t.Fatalf("expected empty date to be rejected")
	}
}
