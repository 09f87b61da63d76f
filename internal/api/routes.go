package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/nanooptics/internal/api/handlers"
	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/predictor"
	"github.com/RMahshie/nanooptics/internal/processing"
	"github.com/RMahshie/nanooptics/internal/repository"
	"github.com/RMahshie/nanooptics/internal/simulator"
	"github.com/RMahshie/nanooptics/internal/storage"
)

// Version is reported by the health endpoint and the OpenAPI document
const Version = "1.0.0"

// Services bundles the dependencies the handlers need
type Services struct {
	Repo         repository.PredictionRepository
	S3           storage.S3Service
	Catalog      catalog.Catalog
	Predictor    predictor.Client
	Processing   processing.ProcessingService
	NewSource    func() simulator.RandomSource
	DefaultModel string
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, svc Services) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(svc.Predictor, Version)
	datasetHandler := handlers.NewDatasetHandler(svc.Catalog, svc.NewSource)
	predictionHandler := handlers.NewPredictionHandler(svc.Repo, svc.S3, svc.Catalog, svc.Processing, svc.DefaultModel)

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service and the prediction service",
	}, healthHandler.Health)

	// Register dataset routes
	huma.Register(api, huma.Operation{
		OperationID: "listDatasets",
		Method:      http.MethodGet,
		Path:        "/api/datasets",
		Summary:     "List sample datasets",
		Description: "Returns the sample micrograph catalog, optionally filtered by material",
		Tags:        []string{"Datasets"},
	}, datasetHandler.ListDatasets)

	huma.Register(api, huma.Operation{
		OperationID: "simulateAllDatasets",
		Method:      http.MethodPost,
		Path:        "/api/datasets/simulate",
		Summary:     "Simulate all datasets",
		Description: "Returns a simulated spectrum for every catalog item",
		Tags:        []string{"Datasets"},
	}, datasetHandler.SimulateAll)

	huma.Register(api, huma.Operation{
		OperationID: "getDataset",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}",
		Summary:     "Get a sample dataset",
		Tags:        []string{"Datasets"},
	}, datasetHandler.GetDataset)

	huma.Register(api, huma.Operation{
		OperationID: "simulateDataset",
		Method:      http.MethodPost,
		Path:        "/api/datasets/{id}/simulate",
		Summary:     "Simulate a dataset spectrum",
		Description: "Returns a simulated absorption spectrum for one catalog item",
		Tags:        []string{"Datasets"},
	}, datasetHandler.SimulateDataset)

	huma.Register(api, huma.Operation{
		OperationID: "simulate",
		Method:      http.MethodPost,
		Path:        "/api/simulations",
		Summary:     "Simulate a spectrum",
		Description: "Simulates a spectrum from free-text peak, size and material values",
		Tags:        []string{"Datasets"},
	}, datasetHandler.Simulate)

	// Register prediction routes
	huma.Register(api, huma.Operation{
		OperationID: "createPrediction",
		Method:      http.MethodPost,
		Path:        "/api/predictions",
		Summary:     "Create a new prediction",
		Description: "Creates a prediction for a catalog item or returns an upload URL for a micrograph",
		Tags:        []string{"Predictions"},
	}, predictionHandler.CreatePrediction)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/predictions/{id}/process",
		Summary:     "Start processing prediction",
		Description: "Starts the prediction pipeline in the background",
		Tags:        []string{"Predictions"},
	}, predictionHandler.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "getPredictionStatus",
		Method:      http.MethodGet,
		Path:        "/api/predictions/{id}/status",
		Summary:     "Get prediction status",
		Description: "Returns the current status and progress of a prediction",
		Tags:        []string{"Predictions"},
	}, predictionHandler.GetPredictionStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getPredictionResults",
		Method:      http.MethodGet,
		Path:        "/api/predictions/{id}/results",
		Summary:     "Get prediction results",
		Description: "Returns the predicted spectrum and its metrics",
		Tags:        []string{"Predictions"},
	}, predictionHandler.GetPredictionResults)

	huma.Register(api, huma.Operation{
		OperationID: "getPredictionChart",
		Method:      http.MethodGet,
		Path:        "/api/predictions/{id}/chart",
		Summary:     "Get prediction chart",
		Description: "Returns the predicted spectrum rendered as a PNG image",
		Tags:        []string{"Predictions"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Spectrum chart",
				Content: map[string]*huma.MediaType{
					"image/png": {},
				},
			},
		},
	}, predictionHandler.GetPredictionChart)

	huma.Register(api, huma.Operation{
		OperationID: "listSessionPredictions",
		Method:      http.MethodGet,
		Path:        "/api/sessions/{session_id}/predictions",
		Summary:     "List session predictions",
		Description: "Returns every prediction of a session, newest first",
		Tags:        []string{"Predictions"},
	}, predictionHandler.ListSessionPredictions)
}
