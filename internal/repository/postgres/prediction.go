package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RMahshie/nanooptics/internal/repository"
	"github.com/RMahshie/nanooptics/pkg/models"
	"github.com/google/uuid"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *sql.DB
}

// NewPostgresPredictionRepository creates a new PostgreSQL prediction repository
func NewPostgresPredictionRepository(db *sql.DB) repository.PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

const predictionColumns = `id, session_id, source, dataset_item_id, file_name, model, image_s3_key,
	status, progress, error_message, created_at, updated_at, completed_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row rowScanner) (*models.Prediction, error) {
	var p models.Prediction
	var datasetItemID sql.NullInt64
	var imageS3Key, errorMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.SessionID,
		&p.Source,
		&datasetItemID,
		&p.FileName,
		&p.Model,
		&imageS3Key,
		&p.Status,
		&p.Progress,
		&errorMsg,
		&p.CreatedAt,
		&p.UpdatedAt,
		&completedAt)
	if err != nil {
		return nil, err
	}

	if datasetItemID.Valid {
		id := int(datasetItemID.Int64)
		p.DatasetItemID = &id
	}
	if imageS3Key.Valid {
		p.ImageS3Key = &imageS3Key.String
	}
	if errorMsg.Valid {
		p.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}

	return &p, nil
}

// Create inserts a new prediction record. A missing ID is generated.
func (r *PostgresPredictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	if prediction.ID == "" {
		prediction.ID = uuid.New().String()
	}
	if prediction.Status == "" {
		prediction.Status = models.StatusPending
	}
	if prediction.Model == "" {
		prediction.Model = models.DefaultModel
	}
	now := time.Now()
	if prediction.CreatedAt.IsZero() {
		prediction.CreatedAt = now
	}
	if prediction.UpdatedAt.IsZero() {
		prediction.UpdatedAt = now
	}

	query := `
		INSERT INTO predictions (id, session_id, source, dataset_item_id, file_name, model, image_s3_key, status, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		prediction.ID,
		prediction.SessionID,
		prediction.Source,
		prediction.DatasetItemID,
		prediction.FileName,
		prediction.Model,
		prediction.ImageS3Key,
		prediction.Status,
		prediction.Progress,
		prediction.CreatedAt,
		prediction.UpdatedAt)

	return err
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	p, err := scanPrediction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("prediction %s: %w", id, repository.ErrNotFound)
	}
	return p, err
}

// GetBySessionID retrieves predictions by session ID, newest first
func (r *PostgresPredictionRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions
		WHERE session_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	predictions := []*models.Prediction{}
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// ClaimPending moves a pending prediction to processing. Only one caller can
// claim a prediction; the others get repository.ErrNotPending.
func (r *PostgresPredictionRepository) ClaimPending(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE predictions
		SET status = 'processing', progress = 10, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	err := expectOne(r.db.ExecContext(ctx, query, id))
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("prediction %s: %w", id, repository.ErrNotPending)
	}
	return err
}

// UpdateStatus updates the status and progress of a prediction
func (r *PostgresPredictionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE predictions
		SET status = $1::varchar, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1::varchar = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	return expectOne(r.db.ExecContext(ctx, query, status, progress, id))
}

// UpdateError marks a prediction as failed with the given message
func (r *PostgresPredictionRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE predictions
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	return expectOne(r.db.ExecContext(ctx, query, errorMsg, id))
}

// StoreResults stores prediction results
func (r *PostgresPredictionRepository) StoreResults(ctx context.Context, results *models.PredictionResults) error {
	if results.ID == "" {
		results.ID = uuid.New().String()
	}
	if results.CreatedAt.IsZero() {
		results.CreatedAt = time.Now()
	}

	wavelengths, err := json.Marshal(results.Wavelengths)
	if err != nil {
		return fmt.Errorf("failed to marshal wavelengths: %w", err)
	}

	spectrum, err := json.Marshal(results.Spectrum)
	if err != nil {
		return fmt.Errorf("failed to marshal spectrum: %w", err)
	}

	var features []byte
	if results.Features != nil {
		features, err = json.Marshal(results.Features)
		if err != nil {
			return fmt.Errorf("failed to marshal features: %w", err)
		}
	}

	query := `
		INSERT INTO prediction_results (id, prediction_id, wavelengths, spectrum, peak, fwhm, max_intensity, confidence, features, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.PredictionID,
		string(wavelengths),
		string(spectrum),
		results.Peak,
		results.FWHM,
		results.MaxIntensity,
		results.Confidence,
		nullableJSON(features),
		results.CreatedAt)

	return err
}

// GetResults retrieves prediction results
func (r *PostgresPredictionRepository) GetResults(ctx context.Context, predictionID uuid.UUID) (*models.PredictionResults, error) {
	query := `
		SELECT id, prediction_id, wavelengths, spectrum, peak, fwhm, max_intensity, confidence, features, created_at
		FROM prediction_results
		WHERE prediction_id = $1`

	var results models.PredictionResults
	var wavelengths, spectrum []byte
	var features sql.NullString
	var confidence sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, predictionID).Scan(
		&results.ID,
		&results.PredictionID,
		&wavelengths,
		&spectrum,
		&results.Peak,
		&results.FWHM,
		&results.MaxIntensity,
		&confidence,
		&features,
		&results.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("results for prediction %s: %w", predictionID, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(wavelengths, &results.Wavelengths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wavelengths: %w", err)
	}
	if err := json.Unmarshal(spectrum, &results.Spectrum); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spectrum: %w", err)
	}
	if confidence.Valid {
		c := int(confidence.Int64)
		results.Confidence = &c
	}
	if features.Valid {
		var f map[string]interface{}
		if err := json.Unmarshal([]byte(features.String), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
		results.Features = f
	}

	return &results, nil
}

func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}

func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
