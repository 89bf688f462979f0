package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/matchsight/matchsight/internal/usecase"
)

type syncJobRequest struct {
	// Force runs the sync even when the stored corpus is still fresh.
	Force bool `json:"force"`
	// Full redownloads every scheduled match instead of the incremental delta.
	Full bool `json:"full"`
}

func (h *Handler) RunSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeSyncJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var report usecase.SyncReport
	if req.Full {
		report, err = h.syncService.Run(ctx, usecase.SyncOptions{Full: true, OnlyPlayed: true})
	} else {
		report, err = h.syncService.RunIfStale(ctx, req.Force)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "run sync job failed", "force", req.Force, "full", req.Full, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) GetCorpusStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCorpusStatus")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	status, err := h.syncService.Status(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get corpus status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	lastUpdate := ""
	if !status.LastUpdate.IsZero() {
		lastUpdate = status.LastUpdate.UTC().Format(time.RFC3339)
	}

	writeSuccess(ctx, w, http.StatusOK, corpusStatusDTO{
		Exists:       status.Exists,
		LastUpdate:   lastUpdate,
		HoursAgo:     round1(status.HoursAgo),
		TotalMatches: status.TotalMatches,
		DownloadMode: status.DownloadMode,
		NeedsUpdate:  status.NeedsUpdate,
	})
}

type corpusStatusDTO struct {
	Exists       bool    `json:"exists"`
	LastUpdate   string  `json:"last_update,omitempty"`
	HoursAgo     float64 `json:"hours_ago"`
	TotalMatches int     `json:"total_matches"`
	DownloadMode string  `json:"download_mode"`
	NeedsUpdate  bool    `json:"needs_update"`
}

func decodeSyncJobRequest(r *http.Request) (syncJobRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req syncJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return syncJobRequest{}, nil
		}
		return syncJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
