package processing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/predictor"
	"github.com/RMahshie/nanooptics/internal/repository"
	"github.com/RMahshie/nanooptics/internal/simulator"
	"github.com/RMahshie/nanooptics/internal/spectrum"
	"github.com/RMahshie/nanooptics/internal/storage"
	"github.com/RMahshie/nanooptics/pkg/models"
)

// Failure messages recorded on a prediction
const (
	msgDownloadFailed   = "Failed to download image"
	msgUnknownItem      = "Dataset item not found"
	msgInvalidResult    = "Prediction returned an invalid spectrum"
	msgProcessingFailed = "Prediction processing failed"
)

// failure carries the message recorded on the prediction. A failure with a
// nil err is fully handled once recorded and is not reported to the caller.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string {
	if f.err == nil {
		return f.msg
	}
	return f.msg + ": " + f.err.Error()
}

func (f *failure) Unwrap() error { return f.err }

type ProcessingService interface {
	ProcessPrediction(ctx context.Context, predictionID uuid.UUID) error
}

// Options tune the processing pipeline
type Options struct {
	// SimulationLatency delays simulated predictions so they pace like real ones
	SimulationLatency time.Duration
	// NewSource supplies the random source for each simulation; nil uses the global one
	NewSource func() simulator.RandomSource
}

type processingService struct {
	s3         storage.S3Service
	repository repository.PredictionRepository
	predictor  predictor.Client
	catalog    catalog.Catalog
	opts       Options
}

func NewProcessingService(s3Service storage.S3Service, repo repository.PredictionRepository, client predictor.Client, cat catalog.Catalog, opts Options) ProcessingService {
	return &processingService{
		s3:         s3Service,
		repository: repo,
		predictor:  client,
		catalog:    cat,
		opts:       opts,
	}
}

// ProcessPrediction runs the pipeline for a prediction already claimed with
// PredictionRepository.ClaimPending. Any error marks the prediction failed,
// and the stored micrograph of a failed upload is removed.
func (s *processingService) ProcessPrediction(ctx context.Context, predictionID uuid.UUID) error {
	logger := log.With().Str("predictionID", predictionID.String()).Logger()

	prediction, err := s.process(ctx, predictionID, logger)
	if err == nil {
		return nil
	}

	msg := msgProcessingFailed
	var f *failure
	if errors.As(err, &f) {
		msg = f.msg
		err = f.err
	}

	// Recorded even when ctx is already done
	cleanupCtx := context.WithoutCancel(ctx)
	if uerr := s.repository.UpdateError(cleanupCtx, predictionID, msg); uerr != nil {
		logger.Error().Err(uerr).Str("reason", msg).Msg("Failed to mark prediction as failed")
	}

	if prediction != nil && prediction.ImageS3Key != nil {
		if derr := s.s3.DeleteFile(cleanupCtx, *prediction.ImageS3Key); derr != nil {
			logger.Warn().Err(derr).Str("key", *prediction.ImageS3Key).Msg("Failed to delete micrograph")
		}
	}

	return err
}

func (s *processingService) process(ctx context.Context, predictionID uuid.UUID, logger zerolog.Logger) (*models.Prediction, error) {
	// Step 1: Get prediction details
	prediction, err := s.repository.GetByID(ctx, predictionID)
	if err != nil {
		return nil, err
	}

	// Step 2: Obtain a spectrum from the simulator or the prediction service
	var result *models.SpectrumResult
	switch {
	case prediction.DatasetItemID != nil:
		item, err := s.catalog.Get(*prediction.DatasetItemID)
		if err != nil {
			return prediction, &failure{msg: msgUnknownItem}
		}

		logger.Info().Int("datasetItemID", item.ID).Dur("latency", s.opts.SimulationLatency).Msg("Simulating spectrum")
		if err := sleep(ctx, s.opts.SimulationLatency); err != nil {
			return prediction, err
		}
		result = simulator.Generate(item, s.newSource())

	case prediction.ImageS3Key != nil:
		if err := s.repository.UpdateStatus(ctx, predictionID, models.StatusProcessing, 30); err != nil {
			return prediction, err
		}

		image, err := s.s3.DownloadFile(ctx, *prediction.ImageS3Key)
		if err != nil {
			logger.Error().Err(err).Str("key", *prediction.ImageS3Key).Msg("Image download failed")
			return prediction, &failure{msg: msgDownloadFailed}
		}

		if err := s.repository.UpdateStatus(ctx, predictionID, models.StatusProcessing, 50); err != nil {
			return prediction, err
		}

		logger.Info().Str("model", prediction.Model).Int("imageBytes", len(image)).Msg("Requesting prediction")
		result, err = s.predictor.Predict(ctx, prediction.FileName, bytes.NewReader(image), prediction.Model)
		if err != nil {
			logger.Error().Err(err).Msg("Prediction service failed")
			return prediction, &failure{msg: predictor.Detail(err), err: fmt.Errorf("prediction failed: %w", err)}
		}

	default:
		return prediction, fmt.Errorf("prediction %s has neither a dataset item nor an image", predictionID)
	}

	// Step 3: Derive metrics from the curve
	if err := s.repository.UpdateStatus(ctx, predictionID, models.StatusProcessing, 80); err != nil {
		return prediction, err
	}

	metrics, err := spectrum.Analyze(result.Wavelengths, result.Spectrum)
	if err != nil {
		return prediction, &failure{msg: msgInvalidResult, err: fmt.Errorf("invalid spectrum: %w", err)}
	}
	if result.Peak == 0 {
		result.Peak = metrics.PeakWavelength
	}
	if result.FWHM == 0 {
		result.FWHM = metrics.FWHM
	}

	// Step 4: Store results
	if err := s.repository.UpdateStatus(ctx, predictionID, models.StatusProcessing, 90); err != nil {
		return prediction, err
	}

	results := &models.PredictionResults{
		ID:           uuid.New().String(),
		PredictionID: prediction.ID,
		Wavelengths:  result.Wavelengths,
		Spectrum:     result.Spectrum,
		Peak:         result.Peak,
		FWHM:         result.FWHM,
		MaxIntensity: metrics.MaxIntensity,
		Confidence:   result.Confidence,
		Features:     result.Features,
		CreatedAt:    time.Now(),
	}

	if err := s.repository.StoreResults(ctx, results); err != nil {
		return prediction, fmt.Errorf("failed to store results: %w", err)
	}

	// Step 5: Mark complete
	if err := s.repository.UpdateStatus(ctx, predictionID, models.StatusCompleted, 100); err != nil {
		return prediction, err
	}

	logger.Info().Float64("peak", results.Peak).Float64("fwhm", results.FWHM).Msg("Prediction completed")
	return prediction, nil
}

func (s *processingService) newSource() simulator.RandomSource {
	if s.opts.NewSource == nil {
		return simulator.GlobalSource
	}
	return s.opts.NewSource()
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsNotFound reports whether err means the prediction does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
