package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/groundview"
	"github.com/riskibarqy/ground-setup/internal/usecase"
)

type internalJobSyncRequest struct {
	DispatchID string `json:"dispatchId" validate:"omitempty,max=128"`
	Trigger    string `json:"trigger" validate:"omitempty,oneof=manual schedule queue"`
}

type rebuildWeekRequest struct {
	WeekStart string `json:"weekStart" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) RunSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncJob")
	defer span.End()

	if h.jobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync job service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req internalJobSyncRequest
	if err := h.decodeOptionalJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Trigger == "" {
		req.Trigger = usecase.TriggerManual
	}

	result, err := h.jobService.RunSyncJob(ctx, usecase.SyncJobInput{
		DispatchID: req.DispatchID,
		Trigger:    req.Trigger,
	})
	if err != nil {
		runID := ""
		if result.Sync != nil {
			runID = result.Sync.RunID
		}
		h.logger.WarnContext(ctx, "run sync job failed", "dispatch_id", req.DispatchID, "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunBootstrapJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBootstrapJob")
	defer span.End()

	if h.jobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync job service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.jobService.Bootstrap(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run bootstrap job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRebuildWeekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRebuildWeekJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req rebuildWeekRequest
	if err := h.decodeOptionalJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var weekStart *time.Time
	if req.WeekStart != "" {
		parsed, err := time.ParseInLocation(groundview.WeekKeyLayout, req.WeekStart, h.location())
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: weekStart must be YYYY-MM-DD", usecase.ErrInvalidInput))
			return
		}
		weekStart = &parsed
	}

	view, err := h.syncService.RebuildWeek(ctx, weekStart)
	if err != nil {
		h.logger.WarnContext(ctx, "rebuild week job failed", "week_start", req.WeekStart, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toWeekViewDTO(view, h.location()))
}

func (h *Handler) location() *time.Location {
	if h.queryService == nil {
		return time.UTC
	}
	return h.queryService.Location()
}
