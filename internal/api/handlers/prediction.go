package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/processing"
	"github.com/RMahshie/nanooptics/internal/render"
	"github.com/RMahshie/nanooptics/internal/repository"
	"github.com/RMahshie/nanooptics/internal/storage"
	"github.com/RMahshie/nanooptics/pkg/models"
)

// Accepted micrograph sizes in bytes
const (
	MinImageSize = 1024
	MaxImageSize = 50 * 1024 * 1024
)

// PredictionHandler handles prediction-related HTTP requests
type PredictionHandler struct {
	repo          repository.PredictionRepository
	s3Service     storage.S3Service
	catalog       catalog.Catalog
	processingSvc processing.ProcessingService
	defaultModel  string
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(repo repository.PredictionRepository, s3Service storage.S3Service, cat catalog.Catalog, processingSvc processing.ProcessingService, defaultModel string) *PredictionHandler {
	if defaultModel == "" {
		defaultModel = models.DefaultModel
	}
	return &PredictionHandler{
		repo:          repo,
		s3Service:     s3Service,
		catalog:       cat,
		processingSvc: processingSvc,
		defaultModel:  defaultModel,
	}
}

// CreatePrediction creates a prediction for a catalog item or an image upload.
// Uploads get a pre-signed URL the client PUTs the micrograph to.
func (h *PredictionHandler) CreatePrediction(ctx context.Context, req *models.CreatePredictionRequest) (*models.CreatePredictionResponse, error) {
	body := req.Body
	predictionID := uuid.New()
	now := time.Now()

	model := body.Model
	if model == "" {
		model = h.defaultModel
	}

	prediction := &models.Prediction{
		ID:        predictionID.String(),
		SessionID: body.SessionID,
		Model:     model,
		Status:    models.StatusPending,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	resp := &models.CreatePredictionResponse{}

	if body.DatasetItemID != 0 {
		item, err := h.catalog.Get(body.DatasetItemID)
		if err != nil {
			return nil, huma.Error404NotFound("Dataset item not found", err)
		}

		itemID := item.ID
		prediction.Source = models.SourceDataset
		prediction.DatasetItemID = &itemID
		prediction.FileName = item.Name
	} else {
		if body.FileSize < MinImageSize {
			return nil, huma.Error400BadRequest("Image too small. Please choose a micrograph of at least 1 KB.", nil)
		}
		if body.FileSize > MaxImageSize {
			return nil, huma.Error400BadRequest("Image too large. Maximum size is 50 MB.", nil)
		}

		imageKey := fmt.Sprintf("images/%s%s", predictionID, storage.ExtensionFor(body.MimeType))

		log.Info().Str("imageKey", imageKey).Str("mimeType", body.MimeType).Msg("Generating S3 upload URL")
		uploadURL, err := h.s3Service.GenerateUploadURL(ctx, imageKey, body.MimeType)
		if err != nil {
			if strings.Contains(err.Error(), "invalid content type") {
				return nil, huma.Error400BadRequest("Image format not supported. Please upload a TIFF, PNG, JPEG or BMP file.", err)
			}
			return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
		}

		fileName := path.Base(body.FileName)
		if body.FileName == "" {
			fileName = "image" + storage.ExtensionFor(body.MimeType)
		}

		prediction.Source = models.SourceUpload
		prediction.FileName = fileName
		prediction.ImageS3Key = &imageKey
		resp.Body.UploadURL = uploadURL
		resp.Body.ExpiresIn = int(storage.UploadURLExpiry.Seconds())
	}

	if err := h.repo.Create(ctx, prediction); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create prediction", err)
	}

	log.Info().
		Str("predictionID", prediction.ID).
		Str("sessionID", prediction.SessionID).
		Str("source", prediction.Source).
		Str("model", prediction.Model).
		Msg("Prediction created")

	resp.Body.ID = prediction.ID
	resp.Body.Source = prediction.Source
	return resp, nil
}

// StartProcessing starts the prediction pipeline in the background
func (h *PredictionHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	predictionID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid prediction ID", err)
	}

	prediction, err := h.repo.GetByID(ctx, predictionID)
	if err != nil {
		return nil, notFoundOr500("Prediction not found", err)
	}
	if prediction.Status != models.StatusPending {
		return nil, huma.Error409Conflict("Prediction already started",
			fmt.Errorf("prediction status is %s", prediction.Status))
	}

	// Only one concurrent request can move the prediction out of pending
	if err := h.repo.ClaimPending(ctx, predictionID); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			return nil, huma.Error409Conflict("Prediction already started", err)
		}
		return nil, huma.Error500InternalServerError("Failed to start processing", err)
	}

	// Start processing in background (don't wait for completion)
	log.Info().Str("predictionID", prediction.ID).Msg("Starting background processing goroutine")
	go func() {
		err := h.processingSvc.ProcessPrediction(context.Background(), predictionID)
		if err != nil {
			log.Error().Err(err).Str("predictionID", predictionID.String()).Msg("Prediction processing failed")
		}
	}()

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

// GetPredictionStatus returns the current status of a prediction
func (h *PredictionHandler) GetPredictionStatus(ctx context.Context, req *models.GetPredictionStatusRequest) (*models.GetPredictionStatusResponse, error) {
	predictionID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid prediction ID", err)
	}

	prediction, err := h.repo.GetByID(ctx, predictionID)
	if err != nil {
		return nil, notFoundOr500("Prediction not found", err)
	}

	var resultsID *string
	if prediction.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, predictionID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	return &models.GetPredictionStatusResponse{
		Body: models.GetPredictionStatusResponseBody{
			ID:        prediction.ID,
			Status:    prediction.Status,
			Progress:  prediction.Progress,
			Message:   statusMessage(prediction),
			Error:     prediction.ErrorMsg,
			ResultsID: resultsID,
		},
	}, nil
}

// GetPredictionResults returns the spectrum of a completed prediction
func (h *PredictionHandler) GetPredictionResults(ctx context.Context, req *models.GetPredictionResultsRequest) (*models.GetPredictionResultsResponse, error) {
	prediction, results, err := h.completedResults(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var imageURL string
	if prediction.ImageS3Key != nil {
		imageURL, err = h.s3Service.GenerateDownloadURL(ctx, *prediction.ImageS3Key)
		if err != nil {
			log.Warn().Err(err).Str("predictionID", prediction.ID).Msg("Failed to sign image download URL")
			imageURL = ""
		}
	}

	return &models.GetPredictionResultsResponse{
		Body: models.GetPredictionResultsResponseBody{
			ID:           results.ID,
			PredictionID: results.PredictionID,
			Model:        prediction.Model,
			Wavelengths:  results.Wavelengths,
			Spectrum:     results.Spectrum,
			Peak:         results.Peak,
			FWHM:         results.FWHM,
			MaxIntensity: results.MaxIntensity,
			Confidence:   results.Confidence,
			Features:     results.Features,
			ImageURL:     imageURL,
			CreatedAt:    results.CreatedAt,
		},
	}, nil
}

// GetPredictionChart renders the spectrum of a completed prediction as PNG
func (h *PredictionHandler) GetPredictionChart(ctx context.Context, req *models.GetPredictionChartRequest) (*models.GetPredictionChartResponse, error) {
	prediction, results, err := h.completedResults(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.SpectrumPNG(&buf, results.SpectrumResult(), prediction.FileName); err != nil {
		if errors.Is(err, render.ErrNonFinite) {
			return nil, huma.Error422UnprocessableEntity("Spectrum cannot be plotted", err)
		}
		return nil, huma.Error500InternalServerError("Failed to render chart", err)
	}

	return &models.GetPredictionChartResponse{
		ContentType: "image/png",
		Body:        buf.Bytes(),
	}, nil
}

// ListSessionPredictions returns the predictions of a session, newest first
func (h *PredictionHandler) ListSessionPredictions(ctx context.Context, req *models.ListSessionPredictionsRequest) (*models.ListSessionPredictionsResponse, error) {
	predictions, err := h.repo.GetBySessionID(ctx, req.SessionID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list predictions", err)
	}
	if predictions == nil {
		predictions = []*models.Prediction{}
	}

	resp := &models.ListSessionPredictionsResponse{}
	resp.Body.Predictions = predictions
	return resp, nil
}

func (h *PredictionHandler) completedResults(ctx context.Context, id string) (*models.Prediction, *models.PredictionResults, error) {
	predictionID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil, huma.Error400BadRequest("Invalid prediction ID", err)
	}

	prediction, err := h.repo.GetByID(ctx, predictionID)
	if err != nil {
		return nil, nil, notFoundOr500("Prediction not found", err)
	}

	if prediction.Status != models.StatusCompleted {
		return nil, nil, huma.Error409Conflict("Prediction not yet completed",
			fmt.Errorf("prediction status is %s", prediction.Status))
	}

	results, err := h.repo.GetResults(ctx, predictionID)
	if err != nil {
		return nil, nil, notFoundOr500("Results not found", err)
	}
	return prediction, results, nil
}

func notFoundOr500(msg string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return huma.Error404NotFound(msg, err)
	}
	return huma.Error500InternalServerError("Failed to load prediction", err)
}

// statusMessage creates a human-readable status message
func statusMessage(p *models.Prediction) string {
	switch p.Status {
	case models.StatusPending:
		if p.Source == models.SourceUpload {
			return "Waiting for image upload..."
		}
		return "Prediction queued for processing..."
	case models.StatusProcessing:
		switch {
		case p.Source == models.SourceDataset && p.Progress < 80:
			return "Simulating spectrum..."
		case p.Progress < 25:
			return "Starting prediction..."
		case p.Progress < 50:
			return "Downloading image..."
		case p.Progress < 80:
			return "Predicting spectrum..."
		default:
			return "Finalizing results..."
		}
	case models.StatusCompleted:
		return "Prediction complete!"
	case models.StatusFailed:
		return "Prediction failed. Please try again."
	default:
		return "Unknown status"
	}
}
