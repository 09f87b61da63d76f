package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/nanooptics/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a prediction or its results do not exist
var ErrNotFound = errors.New("not found")

// ErrNotPending is returned when a prediction cannot be claimed for processing
var ErrNotPending = errors.New("prediction is not pending")

// PredictionRepository defines the interface for prediction data operations
type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Prediction, error)
	// ClaimPending atomically moves a pending prediction to processing
	ClaimPending(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.PredictionResults) error
	GetResults(ctx context.Context, predictionID uuid.UUID) (*models.PredictionResults, error)
}
