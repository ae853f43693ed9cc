package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/ground-setup/internal/platform/logging"
)

// SyncJobPath is the internal endpoint a queued sync is delivered to.
const SyncJobPath = "/v1/internal/jobs/sync"

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type SyncJobConfig struct {
	Interval time.Duration
}

type SyncJobInput struct {
	DispatchID string
	Trigger    string
}

type SyncJobResult struct {
	Mode             string      `json:"mode"`
	Sync             *SyncResult `json:"sync,omitempty"`
	QueuedCount      int         `json:"queued_count"`
	QueuedOperations []string    `json:"queued_operations"`
}

// SyncJobPayload is the body of a queued sync delivery.
type SyncJobPayload struct {
	DispatchID string `json:"dispatchId"`
	Trigger    string `json:"trigger"`
}

// SyncJobService keeps a self-renewing chain of queued syncs: every
// delivered job runs the sync and queues the next one.
type SyncJobService struct {
	sync   *SyncService
	queue  JobQueue
	cfg    SyncJobConfig
	logger *logging.Logger
	now    func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewSyncJobService(sync *SyncService, queue JobQueue, cfg SyncJobConfig, logger *logging.Logger) *SyncJobService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	return &SyncJobService{
		sync:   sync,
		queue:  queue,
		cfg:    cfg,
		logger: logger.WithComponent("jobs"),
		now:    time.Now,
	}
}

// Bootstrap queues an immediate sync that starts the chain.
func (s *SyncJobService) Bootstrap(ctx context.Context) (SyncJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncJobService.Bootstrap")
	defer span.End()

	result := SyncJobResult{Mode: "bootstrap", QueuedOperations: make([]string, 0, 1)}
	op, err := s.enqueueNext(ctx, 0)
	if err != nil {
		return SyncJobResult{}, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, op)
	return result, nil
}

// RunSyncJob runs one queued sync and queues the next one, also when the
// sync failed: the next scheduled run is the only retry.
func (s *SyncJobService) RunSyncJob(ctx context.Context, input SyncJobInput) (SyncJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncJobService.RunSyncJob")
	defer span.End()

	trigger := strings.TrimSpace(input.Trigger)
	if trigger == "" {
		trigger = TriggerQueue
	}
	if input.DispatchID != "" {
		s.logger.InfoContext(ctx, "sync job delivered", "dispatch_id", input.DispatchID)
	}

	syncResult, syncErr := s.sync.Run(ctx, trigger)
	result := SyncJobResult{
		Mode:             "sync",
		Sync:             &syncResult,
		QueuedOperations: make([]string, 0, 1),
	}

	op, err := s.enqueueNext(ctx, s.cfg.Interval)
	if err != nil {
		if syncErr != nil {
			return result, fmt.Errorf("%w; also: %w", syncErr, err)
		}
		return result, err
	}
	result.QueuedCount++
	result.QueuedOperations = append(result.QueuedOperations, op)

	return result, syncErr
}

// RunScheduled drives syncs from an in-process ticker until ctx ends. It is
// used when no job queue is configured.
func (s *SyncJobService) RunScheduled(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.cfg.Interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.runScheduledOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.runScheduledOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduled sync stopped")
			return
		}
	}
}

func (s *SyncJobService) runScheduledOnce(ctx context.Context) {
	if _, err := s.sync.Run(ctx, TriggerSchedule); err != nil {
		s.logger.WarnContext(ctx, "scheduled sync failed", "error", err)
	}
}

func (s *SyncJobService) enqueueNext(ctx context.Context, delay time.Duration) (string, error) {
	now := s.now().UTC()
	dedupID := dedupKey("sync", now.Add(delay), s.cfg.Interval)
	payload := SyncJobPayload{DispatchID: dedupID, Trigger: TriggerQueue}
	if err := s.queue.Enqueue(ctx, SyncJobPath, payload, delay, dedupID); err != nil {
		return "", fmt.Errorf("%w: enqueue sync job %s: %w", ErrDependencyUnavailable, dedupID, err)
	}
	s.logger.InfoContext(ctx, "sync job queued", "dispatch_id", dedupID, "delay", delay.String())
	return "sync:" + dedupID, nil
}

// dedupKey buckets the run time so that duplicate deliveries within one
// interval collapse onto a single queued message.
func dedupKey(prefix string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}
