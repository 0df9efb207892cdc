package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stationcal/stationcal/internal/api/middleware"
	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/worker"
)

// SyncRunner runs one station sync.
type SyncRunner interface {
	Run(ctx context.Context) (*worker.SyncResult, error)
}

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	sync   SyncRunner
	logger zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sync SyncRunner, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{sync: sync, logger: logger}
}

// RunSync handles POST /v1/admin/sync - runs the station sync and waits for it.
func (h *AdminHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		response.ServiceUnavailable(w, r, "sync is not configured")
		return
	}

	operator := middleware.GetOperator(r.Context())
	h.logger.Info().Str("operator", operator).Msg("sync triggered")

	result, err := h.sync.Run(r.Context())
	switch {
	case errors.Is(err, worker.ErrSyncInProgress):
		response.Conflict(w, r, "a sync is already running")
	case err != nil:
		h.logger.Error().Err(err).Str("operator", operator).Msg("triggered sync failed")
		response.BadGateway(w, r, "sync failed: "+err.Error())
	default:
		response.JSON(w, r, http.StatusOK, toSyncResult(result))
	}
}
