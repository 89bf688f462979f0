package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/matchsight/matchsight/internal/platform/logging"
	"github.com/matchsight/matchsight/internal/usecase"
)

type Handler struct {
	analyticsService *usecase.AnalyticsService
	squadService     *usecase.SquadService
	syncService      *usecase.SyncService
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	analyticsService *usecase.AnalyticsService,
	squadService *usecase.SquadService,
	syncService *usecase.SyncService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		analyticsService: analyticsService,
		squadService:     squadService,
		syncService:      syncService,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// round1 is the DTO-boundary rounding for percentage fields; engine values
// stay unrounded.
func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10.0
	}
	return float64(int(v*10+0.5)) / 10.0
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int(v*100-0.5)) / 100.0
	}
	return float64(int(v*100+0.5)) / 100.0
}
