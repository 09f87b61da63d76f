package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/nanooptics/internal/predictor"
	"github.com/RMahshie/nanooptics/pkg/models"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports service health and predictor reachability
type HealthHandler struct {
	predictor predictor.Client
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client predictor.Client, version string) *HealthHandler {
	return &HealthHandler{predictor: client, version: version}
}

// Health returns the health status of the service. An unreachable predictor
// is reported but does not make the service unhealthy.
func (h *HealthHandler) Health(ctx context.Context, _ *struct{}) (*models.HealthResponse, error) {
	resp := &models.HealthResponse{}
	resp.Body.Status = "healthy"
	resp.Body.Version = h.version
	resp.Body.Time = time.Now()
	resp.Body.Predictor = "ok"

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	if err := h.predictor.Health(ctx); err != nil {
		log.Warn().Err(err).Msg("Prediction service unavailable")
		resp.Body.Predictor = "unavailable"
	}
	return resp, nil
}
