package models

import (
	"time"
)

// Prediction statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Prediction sources
const (
	SourceDataset = "dataset"
	SourceUpload  = "upload"
)

// DefaultModel is the model requested from the prediction service when the caller names none
const DefaultModel = "final_demo_model"

// Prediction represents the core prediction entity (for internal use)
type Prediction struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	Source        string     `json:"source"`
	DatasetItemID *int       `json:"dataset_item_id,omitempty"`
	FileName      string     `json:"file_name"`
	Model         string     `json:"model"`
	ImageS3Key    *string    `json:"image_s3_key,omitempty"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	ErrorMsg      *string    `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// PredictionResults represents the stored spectrum of a completed prediction
type PredictionResults struct {
	ID           string                 `json:"id"`
	PredictionID string                 `json:"prediction_id"`
	Wavelengths  []float64              `json:"wavelengths"`
	Spectrum     []float64              `json:"spectrum"`
	Peak         float64                `json:"peak"`
	FWHM         float64                `json:"fwhm"`
	MaxIntensity float64                `json:"max_intensity"`
	Confidence   *int                   `json:"confidence,omitempty"`
	Features     map[string]interface{} `json:"features,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// SpectrumResult returns the stored spectrum in its transport shape
func (r *PredictionResults) SpectrumResult() *SpectrumResult {
	return &SpectrumResult{
		Wavelengths: r.Wavelengths,
		Spectrum:    r.Spectrum,
		Peak:        r.Peak,
		FWHM:        r.FWHM,
		Confidence:  r.Confidence,
		Features:    r.Features,
	}
}
