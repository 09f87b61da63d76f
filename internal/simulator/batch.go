package simulator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/RMahshie/nanooptics/pkg/models"
)

// DefaultBatchLimit bounds the number of spectra generated at once.
const DefaultBatchLimit = 4

// GenerateAll simulates every item concurrently. Each worker gets its own
// source from newSource; a nil newSource means GlobalSource. Results are in
// input order.
func GenerateAll(ctx context.Context, items []models.DatasetItem, newSource func() RandomSource, limit int) ([]*models.SpectrumResult, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	// sources are created up front so a seeded constructor hands them out in a
	// stable order regardless of scheduling
	sources := make([]RandomSource, len(items))
	for i := range items {
		if newSource != nil {
			sources[i] = newSource()
		} else {
			sources[i] = GlobalSource
		}
	}

	results := make([]*models.SpectrumResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Generate(item, sources[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
