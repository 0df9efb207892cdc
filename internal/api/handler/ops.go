// Package handler provides HTTP handlers for the station calendar API.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/stationcal/stationcal/internal/api/models"
	"github.com/stationcal/stationcal/internal/api/response"
	"github.com/stationcal/stationcal/internal/provider/resilience"
	"github.com/stationcal/stationcal/internal/store"
	"github.com/stationcal/stationcal/internal/worker"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncStatus reports the sync job counters.
type SyncStatus interface {
	Metrics() worker.SyncMetrics
}

// OpsConfig holds the dependencies the ops endpoints report on. Every field
// except Version and BuildTime is optional.
type OpsConfig struct {
	Version   string
	BuildTime string
	Providers *resilience.Registry
	Database  Pinger
	Sync      SyncStatus
	Sessions  *store.Registry
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	cfg OpsConfig
	now func() time.Time
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{cfg: cfg, now: time.Now}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
		Details: map[string]interface{}{
			"version":   h.cfg.Version,
			"buildTime": h.cfg.BuildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready - 503 while the database is unreachable.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.now()),
	}

	if err := h.pingDatabase(r.Context()); err != nil {
		health.Status = models.HealthStatusFail
		health.Details = map[string]interface{}{"database": err.Error()}
		response.JSON(w, r, http.StatusServiceUnavailable, health)
		return
	}

	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem, provider and sync status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(h.now()),
		Subsystems: h.subsystems(r.Context()),
		Providers:  h.providers(),
	}
	if h.cfg.Sync != nil {
		status.Sync = toSyncMetrics(h.cfg.Sync.Metrics())
	}

	for _, s := range status.Subsystems {
		status.Status = worst(status.Status, s.Status)
	}
	for _, p := range status.Providers {
		// An unreachable rental backend degrades the service; stored data
		// is still served.
		if p.Status != models.HealthStatusOK {
			status.Status = worst(status.Status, models.HealthStatusDegraded)
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) pingDatabase(ctx context.Context) error {
	if h.cfg.Database == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.cfg.Database.Ping(ctx)
}

func (h *OpsHandler) subsystems(ctx context.Context) []models.SubsystemStatus {
	var out []models.SubsystemStatus

	if h.cfg.Database != nil {
		db := models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
		if err := h.pingDatabase(ctx); err != nil {
			detail := err.Error()
			db.Status = models.HealthStatusFail
			db.Detail = &detail
		}
		out = append(out, db)
	} else {
		detail := "in-memory repositories"
		out = append(out, models.SubsystemStatus{Name: "storage", Status: models.HealthStatusOK, Detail: &detail})
	}

	if h.cfg.Sessions != nil {
		detail := strconv.Itoa(h.cfg.Sessions.Len()) + " active"
		out = append(out, models.SubsystemStatus{Name: "sessions", Status: models.HealthStatusOK, Detail: &detail})
	}

	return out
}

func (h *OpsHandler) providers() []models.ProviderStatus {
	if h.cfg.Providers == nil {
		return []models.ProviderStatus{}
	}

	all := h.cfg.Providers.AllHealth()
	out := make([]models.ProviderStatus, 0, len(all))
	for _, p := range all {
		ps := models.ProviderStatus{
			Provider:            p.Name,
			Status:              providerStatus(p.Status()),
			CircuitState:        p.CircuitState.String(),
			ConsecutiveFailures: p.Counts.ConsecutiveFailures,
		}
		if p.LastSuccessAt != nil {
			ts := models.Timestamp(*p.LastSuccessAt)
			ps.LastSuccessAt = &ts
		}
		if p.LastFailureAt != nil {
			ts := models.Timestamp(*p.LastFailureAt)
			ps.LastFailureAt = &ts
		}
		if p.LastError != "" {
			msg := p.LastError
			ps.Message = &msg
		}
		out = append(out, ps)
	}
	return out
}

func providerStatus(s string) models.HealthStatus {
	switch s {
	case resilience.StatusUnhealthy:
		return models.HealthStatusFail
	case resilience.StatusDegraded:
		return models.HealthStatusDegraded
	default:
		return models.HealthStatusOK
	}
}

var statusRank = map[models.HealthStatus]int{
	models.HealthStatusOK:       0,
	models.HealthStatusDegraded: 1,
	models.HealthStatusFail:     2,
}

func worst(a, b models.HealthStatus) models.HealthStatus {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}
