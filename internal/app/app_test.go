package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/ground-setup/internal/config"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	"github.com/riskibarqy/ground-setup/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
)

func testConfig(store string) config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "ground-setup",
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		Store:              store,
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		HorizonDays:        31,
		ClubName:           "Oatley Football Club",
		ClubGrounds:        []string{"Renown Park"},
		WeekStartDay:       time.Monday,
		Location:           time.UTC,
		CollationLocale:    "en",
		DriblBaseURL:       "http://127.0.0.1:1/api",
		DriblTimeout:       time.Second,
		InternalJobToken:   "secret",
		SyncInterval:       time.Hour,
		MetricsEnabled:     true,
	}
}

func TestNew_MemoryStoreServesHealthAndMetrics(t *testing.T) {
	a, err := New(context.Background(), testConfig(config.StoreMemory), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	handler := a.Handler()
	for _, path := range []string{"/healthz", "/metrics", "/v1/fixtures"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status for %s: got=%d want=%d", path, rec.Code, http.StatusOK)
		}
	}

	srv, err := a.NewHTTPServer()
	if err != nil {
		t.Fatalf("new http server: %v", err)
	}
	if srv.Addr != ":0" {
		t.Fatalf("unexpected addr: got=%s want=:0", srv.Addr)
	}
}

func TestSync_ReadsStoreNotQueryCache(t *testing.T) {
	ctx := context.Background()
	matchDate := time.Now().UTC().AddDate(0, 0, 2).Format(time.RFC3339)
	page := fmt.Sprintf(`{"data":[{"hash_id":"fx-1","attributes":{"date":%q,"home_team_name":"Oatley Football Club U9","away_team_name":"Other FC","ground_name":"Renown Park","field_name":"1"}}],"meta":{"next_cursor":null}}`, matchDate)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	cfg := testConfig(config.StoreMemory)
	cfg.DriblBaseURL = server.URL + "/api"
	rosters := memory.NewRosterRepository([]roster.Entry{{TeamName: "Oatley Football Club U9"}})
	a, err := newApp(cfg, logging.NewNop(), repositories{
		fixtures: memory.NewFixtureRepository(nil),
		rosters:  rosters,
		views:    memory.NewGroundViewRepository(),
		runs:     memory.NewSyncRunRepository(10),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if _, err := a.Query.ListRoster(ctx); err != nil {
		t.Fatalf("list roster: %v", err)
	}
	edited := []roster.Entry{{TeamName: "Oatley Football Club U9", Contacts: roster.Contacts{Coach: "Sam 0400 000 000"}}}
	if err := rosters.Save(ctx, edited); err != nil {
		t.Fatalf("edit roster: %v", err)
	}

	result, err := a.Sync.Run(ctx, "manual")
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}
	if result.Status != syncrun.StatusSuccess {
		t.Fatalf("unexpected status: got=%s want=%s reason=%s", result.Status, syncrun.StatusSuccess, result.Reason)
	}

	stored, _ := rosters.Load(ctx)
	if len(stored) != 1 || stored[0].Contacts.Coach != "Sam 0400 000 000" {
		t.Fatalf("hand-edited contacts lost: got=%+v", stored)
	}
	listed, err := a.Query.ListRoster(ctx)
	if err != nil {
		t.Fatalf("list roster after sync: %v", err)
	}
	if len(listed) != 1 || listed[0].Contacts.Coach != "Sam 0400 000 000" {
		t.Fatalf("query served stale roster: got=%+v", listed)
	}
}

func TestNew_RejectsUnknownStore(t *testing.T) {
	if _, err := New(context.Background(), testConfig("redis"), logging.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported store")
	}
}

func TestNew_SQLiteStore(t *testing.T) {
	cfg := testConfig(config.StoreSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "ground-setup.db")

	db, err := openDatabase(cfg)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	schema, err := os.ReadFile("../../db/migrations/000001_init_ground_setup.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply migration: %v", err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close database: %v", err)
	}

	a, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	table, err := a.Query.ListFixtures(context.Background())
	if err != nil {
		t.Fatalf("list fixtures: %v", err)
	}
	if len(table) != 0 {
		t.Fatalf("unexpected fixtures: got=%d want=0", len(table))
	}

	view, err := a.Sync.RebuildWeek(context.Background(), nil)
	if err != nil {
		t.Fatalf("rebuild week: %v", err)
	}
	weeks, err := a.Query.ListWeekViews(context.Background())
	if err != nil {
		t.Fatalf("list weeks: %v", err)
	}
	if len(weeks) != 1 || !weeks[0].Equal(view.WeekStart) {
		t.Fatalf("unexpected weeks: got=%v want=[%v]", weeks, view.WeekStart)
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := sqliteDSN("file:/tmp/ground.db")
	if !strings.HasPrefix(got, "file:/tmp/ground.db?") {
		t.Fatalf("unexpected dsn prefix: %s", got)
	}
	if !strings.Contains(got, "_pragma=busy_timeout%285000%29") {
		t.Fatalf("busy timeout pragma missing: %s", got)
	}
}
