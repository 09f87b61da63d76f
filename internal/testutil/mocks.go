package testutil

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/RMahshie/nanooptics/pkg/models"
)

// MockPredictionRepository implements repository.PredictionRepository for testing
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	args := m.Called(ctx, prediction)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.Prediction)
	return p, args.Error(1)
}

func (m *MockPredictionRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Prediction, error) {
	args := m.Called(ctx, sessionID)
	p, _ := args.Get(0).([]*models.Prediction)
	return p, args.Error(1)
}

func (m *MockPredictionRepository) ClaimPending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPredictionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockPredictionRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockPredictionRepository) StoreResults(ctx context.Context, results *models.PredictionResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockPredictionRepository) GetResults(ctx context.Context, predictionID uuid.UUID) (*models.PredictionResults, error) {
	args := m.Called(ctx, predictionID)
	r, _ := args.Get(0).(*models.PredictionResults)
	return r, args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockPredictor implements predictor.Client for testing
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, fileName string, image io.Reader, model string) (*models.SpectrumResult, error) {
	args := m.Called(ctx, fileName, image, model)
	r, _ := args.Get(0).(*models.SpectrumResult)
	return r, args.Error(1)
}

func (m *MockPredictor) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessPrediction(ctx context.Context, predictionID uuid.UUID) error {
	args := m.Called(ctx, predictionID)
	return args.Error(0)
}
