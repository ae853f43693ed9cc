package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/domain/roster"
	"github.com/riskibarqy/ground-setup/internal/domain/syncrun"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"github.com/riskibarqy/ground-setup/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
	TriggerQueue    = "queue"
	TriggerCLI      = "cli"
)

type SyncConfig struct {
	HorizonDays int
	WeekAnchor  time.Weekday
	Location    *time.Location
}

// SyncResult is the tagged outcome of one sync: success, empty_result or
// failed. Reason carries the operator notice or the failure message.
type SyncResult struct {
	RunID       string         `json:"run_id"`
	Trigger     string         `json:"trigger"`
	Status      syncrun.Status `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	Fetched     int            `json:"fetched"`
	Merge       MergeStats     `json:"merge"`
	FixtureRows int            `json:"fixture_rows"`
	NewTeams    []string       `json:"new_teams"`
	RosterSize  int            `json:"roster_size"`
	WeekStarts  []string       `json:"week_starts"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// SyncObserver receives every finished run, e.g. for metrics.
type SyncObserver interface {
	ObserveSync(result SyncResult)
}

// SyncWriteListener is told after a run changed persisted tables.
type SyncWriteListener interface {
	TablesChanged(ctx context.Context)
}

// SyncService drives fetch, merge, roster derivation and the weekly views.
type SyncService struct {
	fetcher     *FixtureFetcher
	deriver     *RosterDeriver
	viewBuilder *GroundViewBuilder
	fixtureRepo fixture.Repository
	rosterRepo  roster.Repository
	viewRepo    groundview.Repository
	runRepo     syncrun.Repository
	observer    SyncObserver
	listeners   []SyncWriteListener
	cfg         SyncConfig
	logger      *logging.Logger

	// mu serializes every write path; flight lets concurrent Run callers
	// share the run already in progress.
	mu     sync.Mutex
	flight resilience.SingleFlight[SyncResult]
	now    func() time.Time
	newID  func() string
}

func NewSyncService(
	fetcher *FixtureFetcher,
	deriver *RosterDeriver,
	viewBuilder *GroundViewBuilder,
	fixtureRepo fixture.Repository,
	rosterRepo roster.Repository,
	viewRepo groundview.Repository,
	runRepo syncrun.Repository,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 31
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &SyncService{
		fetcher:     fetcher,
		deriver:     deriver,
		viewBuilder: viewBuilder,
		fixtureRepo: fixtureRepo,
		rosterRepo:  rosterRepo,
		viewRepo:    viewRepo,
		runRepo:     runRepo,
		cfg:         cfg,
		logger:      logger.WithComponent("sync"),
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *SyncService) SetObserver(observer SyncObserver) {
	s.observer = observer
}

func (s *SyncService) AddWriteListener(listener SyncWriteListener) {
	if listener != nil {
		s.listeners = append(s.listeners, listener)
	}
}

// Run performs one sync. A call made while another run is in flight in
// this process waits for it and returns the same result. The run ignores
// cancellation of ctx; once started it writes every table.
func (s *SyncService) Run(ctx context.Context, trigger string) (SyncResult, error) {
	runCtx := context.WithoutCancel(ctx)
	result, err, shared := s.flight.Do("sync", func() (SyncResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.run(runCtx, trigger)
	})
	if shared {
		s.logger.InfoContext(ctx, "joined in-flight sync run", "run_id", result.RunID, "trigger", trigger)
	}
	return result, err
}

func (s *SyncService) run(ctx context.Context, trigger string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Run")
	defer span.End()

	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		trigger = TriggerManual
	}
	result := SyncResult{
		RunID:     s.newID(),
		Trigger:   trigger,
		StartedAt: s.now().UTC(),
	}
	logger := s.logger.With("run_id", result.RunID, "trigger", trigger)
	logger.InfoContext(ctx, "sync started")

	err := s.execute(ctx, &result, logger)
	switch {
	case errors.Is(err, ErrEmptyResult):
		result.Status = syncrun.StatusEmptyResult
		result.Reason = EmptyResultNotice
		err = nil
		logger.WarnContext(ctx, "sync fetched no fixtures, tables left untouched")
	case err != nil:
		result.Status = syncrun.StatusFailed
		result.Reason = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "sync failed", "error", err)
	default:
		result.Status = syncrun.StatusSuccess
		logger.InfoContext(ctx, "sync completed",
			"fetched", result.Fetched,
			"updated", result.Merge.Updated,
			"appended", result.Merge.Appended,
			"new_teams", len(result.NewTeams),
			"weeks", len(result.WeekStarts),
		)
	}
	result.FinishedAt = s.now().UTC()
	span.SetAttributes(attribute.String("sync.status", string(result.Status)))

	s.finish(ctx, result)
	return result, err
}

func (s *SyncService) execute(ctx context.Context, result *SyncResult, logger *logging.Logger) error {
	fetched, err := s.fetcher.Fetch(ctx, s.cfg.HorizonDays)
	if err != nil {
		return err
	}
	result.Fetched = len(fetched)

	table, err := s.fixtureRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load fixture table: %w", err)
	}
	merged, stats := MergeFixtureTable(table, fetched)
	if err := s.fixtureRepo.Save(ctx, merged); err != nil {
		return fmt.Errorf("save fixture table: %w", err)
	}
	result.Merge = stats
	result.FixtureRows = len(merged)

	entries, err := s.rosterRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	entries, added := s.deriver.DeriveAndMerge(entries, fetched)
	if err := s.rosterRepo.Save(ctx, entries); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	result.NewTeams = added
	result.RosterSize = len(entries)
	if len(added) > 0 {
		logger.InfoContext(ctx, "roster gained teams", "teams", added)
	}

	earliest, latest, ok := fixtureDateRange(fetched)
	if !ok {
		logger.WarnContext(ctx, "no fetched fixture carries a date, weekly views skipped")
		return nil
	}
	for _, weekStart := range WeekStarts(earliest, latest, s.cfg.WeekAnchor, s.cfg.Location) {
		view := s.viewBuilder.Build(weekStart, merged, entries)
		if err := s.viewRepo.ReplaceWeek(ctx, view); err != nil {
			return fmt.Errorf("replace %s: %w", groundview.ViewName(weekStart), err)
		}
		result.WeekStarts = append(result.WeekStarts, groundview.WeekKey(weekStart))
		logger.DebugContext(ctx, "week view rebuilt", "week", groundview.ViewName(weekStart), "rows", len(view.Rows))
	}
	return nil
}

// RebuildWeek rebuilds one week view from the persisted tables. A nil
// weekStart selects the week holding yesterday.
func (s *SyncService) RebuildWeek(ctx context.Context, weekStart *time.Time) (groundview.View, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.RebuildWeek")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	var week time.Time
	if weekStart == nil {
		week = WeekStart(s.now().AddDate(0, 0, -1), s.cfg.WeekAnchor, s.cfg.Location)
	} else {
		week = WeekStart(*weekStart, s.cfg.WeekAnchor, s.cfg.Location)
	}

	table, err := s.fixtureRepo.Load(ctx)
	if err != nil {
		return groundview.View{}, fmt.Errorf("load fixture table: %w", err)
	}
	entries, err := s.rosterRepo.Load(ctx)
	if err != nil {
		return groundview.View{}, fmt.Errorf("load roster: %w", err)
	}

	view := s.viewBuilder.Build(week, table, entries)
	if err := s.viewRepo.ReplaceWeek(ctx, view); err != nil {
		return groundview.View{}, fmt.Errorf("replace %s: %w", groundview.ViewName(week), err)
	}
	s.notifyTablesChanged(ctx)

	s.logger.InfoContext(ctx, "week view rebuilt", "week", groundview.ViewName(week), "rows", len(view.Rows))
	return view, nil
}

func (s *SyncService) notifyTablesChanged(ctx context.Context) {
	for _, listener := range s.listeners {
		listener.TablesChanged(ctx)
	}
}

func (s *SyncService) finish(ctx context.Context, result SyncResult) {
	// A failed run may have written part of the tables.
	if result.Status != syncrun.StatusEmptyResult {
		s.notifyTablesChanged(ctx)
	}
	if s.observer != nil {
		s.observer.ObserveSync(result)
	}
	if s.runRepo == nil {
		return
	}

	run := syncrun.Run{
		ID:         result.RunID,
		Trigger:    result.Trigger,
		Status:     result.Status,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Fetched:    result.Fetched,
		Updated:    result.Merge.Updated,
		Appended:   result.Merge.Appended,
		NewTeams:   len(result.NewTeams),
		Message:    result.Reason,
	}
	for _, key := range result.WeekStarts {
		if week, err := time.ParseInLocation(groundview.WeekKeyLayout, key, s.cfg.Location); err == nil {
			run.WeekStarts = append(run.WeekStarts, week)
		}
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record sync run failed", "run_id", run.ID, "error", err)
	}
}
