package handlers

import (
	"context"
	"errors"
	"math"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/simulator"
	"github.com/RMahshie/nanooptics/pkg/models"
)

// DatasetHandler serves the sample catalog and synchronous simulations
type DatasetHandler struct {
	catalog   catalog.Catalog
	newSource func() simulator.RandomSource
}

// NewDatasetHandler creates a new dataset handler. A nil newSource draws from
// the global random source.
func NewDatasetHandler(cat catalog.Catalog, newSource func() simulator.RandomSource) *DatasetHandler {
	if newSource == nil {
		newSource = func() simulator.RandomSource { return simulator.GlobalSource }
	}
	return &DatasetHandler{catalog: cat, newSource: newSource}
}

// ListDatasets returns the catalog, optionally filtered by material
func (h *DatasetHandler) ListDatasets(ctx context.Context, req *models.ListDatasetsRequest) (*models.ListDatasetsResponse, error) {
	items := h.catalog.List()
	if req.Material != "" {
		items = h.catalog.ByMaterial(req.Material)
	}

	resp := &models.ListDatasetsResponse{}
	resp.Body.Items = items
	return resp, nil
}

// GetDataset returns one catalog item
func (h *DatasetHandler) GetDataset(ctx context.Context, req *models.GetDatasetRequest) (*models.GetDatasetResponse, error) {
	item, err := h.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	return &models.GetDatasetResponse{Body: item}, nil
}

// SimulateDataset simulates the spectrum of one catalog item
func (h *DatasetHandler) SimulateDataset(ctx context.Context, req *models.SimulateDatasetRequest) (*models.SimulateSpectrumResponse, error) {
	item, err := h.lookup(req.ID)
	if err != nil {
		return nil, err
	}

	result := simulator.Generate(item, h.newSource())
	log.Debug().Int("datasetItemID", item.ID).Float64("fwhm", result.FWHM).Msg("Simulated dataset spectrum")
	return &models.SimulateSpectrumResponse{Body: result}, nil
}

// SimulateAll simulates every catalog item
func (h *DatasetHandler) SimulateAll(ctx context.Context, _ *struct{}) (*models.SimulateAllResponse, error) {
	items := h.catalog.List()

	results, err := simulator.GenerateAll(ctx, items, h.newSource, simulator.DefaultBatchLimit)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to simulate catalog", err)
	}

	resp := &models.SimulateAllResponse{}
	resp.Body.Items = lo.Map(items, func(item models.DatasetItem, i int) models.SimulatedItem {
		return models.SimulatedItem{Item: item, Spectrum: results[i]}
	})
	return resp, nil
}

// Simulate simulates an ad-hoc sample described by free-text values
func (h *DatasetHandler) Simulate(ctx context.Context, req *models.SimulateRequest) (*models.SimulateSpectrumResponse, error) {
	peak := simulator.ParseValue(req.Body.Peak)
	size := simulator.ParseValue(req.Body.Size)

	// NaN and infinities cannot be encoded as JSON numbers
	if !isFinite(peak) {
		return nil, huma.Error422UnprocessableEntity("Peak must start with a finite number, e.g. \"532 nm\"")
	}
	if !isFinite(size) {
		return nil, huma.Error422UnprocessableEntity("Size must start with a finite number, e.g. \"40 nm\"")
	}

	result := simulator.GenerateFromValues(peak, size, req.Body.Material, h.newSource())
	if !lo.EveryBy(result.Spectrum, isFinite) || !isFinite(result.FWHM) {
		// a zero width at the peak divides zero by zero
		return nil, huma.Error422UnprocessableEntity("Size is out of range for the simulation")
	}
	return &models.SimulateSpectrumResponse{Body: result}, nil
}

func (h *DatasetHandler) lookup(id int) (models.DatasetItem, error) {
	item, err := h.catalog.Get(id)
	if errors.Is(err, catalog.ErrItemNotFound) {
		return models.DatasetItem{}, huma.Error404NotFound("Dataset item not found", err)
	}
	return item, err
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
