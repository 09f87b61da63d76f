package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status    string    `json:"status" example:"healthy" doc:"Service health status"`
		Version   string    `json:"version" example:"1.0.0" doc:"API version"`
		Predictor string    `json:"predictor" enum:"ok,unavailable" doc:"Prediction service reachability"`
		Time      time.Time `json:"time" doc:"Current server time"`
	}
}

// ListDatasetsRequest represents a request to list the sample catalog
type ListDatasetsRequest struct {
	Material string `query:"material" doc:"Only return items of this material"`
}

// ListDatasetsResponse represents the sample catalog
type ListDatasetsResponse struct {
	Body struct {
		Items []DatasetItem `json:"items" doc:"Catalog items"`
	}
}

// GetDatasetRequest represents a request for a single catalog item
type GetDatasetRequest struct {
	ID int `path:"id" minimum:"1" doc:"Catalog item ID"`
}

// GetDatasetResponse represents a single catalog item
type GetDatasetResponse struct {
	Body DatasetItem
}

// SimulateDatasetRequest represents a request to simulate the spectrum of a catalog item
type SimulateDatasetRequest struct {
	ID int `path:"id" minimum:"1" doc:"Catalog item ID"`
}

// SimulateSpectrumResponse represents a simulated spectrum
type SimulateSpectrumResponse struct {
	Body *SpectrumResult
}

// SimulateAllResponse represents simulated spectra for every catalog item
type SimulateAllResponse struct {
	Body struct {
		Items []SimulatedItem `json:"items" doc:"One spectrum per catalog item"`
	}
}

// SimulatedItem pairs a catalog item with its simulated spectrum
type SimulatedItem struct {
	Item     DatasetItem     `json:"item" doc:"Catalog item"`
	Spectrum *SpectrumResult `json:"spectrum" doc:"Simulated spectrum"`
}

// SimulateRequestBody describes an ad-hoc sample to simulate
type SimulateRequestBody struct {
	Material string `json:"material" example:"Gold" required:"true" doc:"Particle material"`
	Size     string `json:"size" example:"40 nm" required:"true" doc:"Nominal particle diameter"`
	Peak     string `json:"peak" example:"532 nm" required:"true" doc:"Nominal resonance wavelength"`
}

// SimulateRequest represents a request to simulate an ad-hoc sample
type SimulateRequest struct {
	Body SimulateRequestBody
}

// CreatePredictionRequestBody is the body of the create prediction request
type CreatePredictionRequestBody struct {
	SessionID     string `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
	DatasetItemID int    `json:"dataset_item_id,omitempty" required:"false" doc:"Catalog item to simulate instead of uploading an image"`
	FileName      string `json:"file_name,omitempty" required:"false" maxLength:"255" doc:"Original image file name"`
	FileSize      int64  `json:"file_size,omitempty" required:"false" doc:"Image size in bytes"`
	MimeType      string `json:"mime_type,omitempty" required:"false" doc:"Image MIME type (image/tiff, image/png, image/jpeg, image/bmp)"`
	Model         string `json:"model,omitempty" required:"false" default:"final_demo_model" doc:"Prediction model name"`
}

// CreatePredictionRequest represents a request to create a new prediction
type CreatePredictionRequest struct {
	Body CreatePredictionRequestBody
}

// CreatePredictionResponseBody is the body of the create prediction response
type CreatePredictionResponseBody struct {
	ID        string `json:"id" doc:"Prediction unique identifier"`
	Source    string `json:"source" enum:"dataset,upload" doc:"Where the spectrum will come from"`
	UploadURL string `json:"upload_url,omitempty" doc:"Pre-signed S3 URL for the image upload"`
	ExpiresIn int    `json:"expires_in,omitempty" doc:"URL expiration time in seconds"`
}

// CreatePredictionResponse represents the response from creating a prediction
type CreatePredictionResponse struct {
	Body CreatePredictionResponseBody
}

// GetPredictionStatusRequest represents a request to get prediction status
type GetPredictionStatusRequest struct {
	ID string `path:"id" doc:"Prediction ID"`
}

// GetPredictionStatusResponseBody is the body of the status response
type GetPredictionStatusResponseBody struct {
	ID        string  `json:"id" doc:"Prediction ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Prediction status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Prediction progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	Error     *string `json:"error,omitempty" doc:"Failure reason when the prediction failed"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when prediction completes"`
}

// GetPredictionStatusResponse represents the current status of a prediction
type GetPredictionStatusResponse struct {
	Body GetPredictionStatusResponseBody
}

// GetPredictionResultsRequest represents a request to get prediction results
type GetPredictionResultsRequest struct {
	ID string `path:"id" doc:"Prediction ID"`
}

// GetPredictionResultsResponseBody is the body of the results response
type GetPredictionResultsResponseBody struct {
	ID           string                 `json:"id" doc:"Results ID"`
	PredictionID string                 `json:"prediction_id" doc:"Prediction ID"`
	Model        string                 `json:"model" doc:"Model used for the prediction"`
	Wavelengths  []float64              `json:"wavelengths" doc:"Wavelengths in nm"`
	Spectrum     []float64              `json:"spectrum" doc:"Extinction values (a.u.)"`
	Peak         float64                `json:"peak" doc:"Resonance peak wavelength in nm"`
	FWHM         float64                `json:"fwhm" doc:"Full width at half maximum in nm"`
	MaxIntensity float64                `json:"max_intensity" doc:"Largest extinction value"`
	Confidence   *int                   `json:"confidence,omitempty" doc:"Confidence percentage"`
	Features     map[string]interface{} `json:"features,omitempty" doc:"Sample features"`
	ImageURL     string                 `json:"image_url,omitempty" doc:"Pre-signed download URL of the uploaded image"`
	CreatedAt    time.Time              `json:"created_at" doc:"Results creation timestamp"`
}

// GetPredictionResultsResponse represents the complete prediction results
type GetPredictionResultsResponse struct {
	Body GetPredictionResultsResponseBody
}

// GetPredictionChartRequest represents a request for the rendered spectrum chart
type GetPredictionChartRequest struct {
	ID string `path:"id" doc:"Prediction ID"`
}

// GetPredictionChartResponse carries a PNG image
type GetPredictionChartResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// StartProcessingRequest represents a request to start processing a prediction
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Prediction ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// ListSessionPredictionsRequest represents a request for all predictions of a session
type ListSessionPredictionsRequest struct {
	SessionID string `path:"session_id" doc:"Client session identifier"`
}

// ListSessionPredictionsResponse lists the predictions of a session, newest first
type ListSessionPredictionsResponse struct {
	Body struct {
		Predictions []*Prediction `json:"predictions" doc:"Predictions of the session"`
	}
}
