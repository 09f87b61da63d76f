// Package catalog holds the sample TEM micrographs offered for simulation.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/RMahshie/nanooptics/pkg/models"
)

// ErrItemNotFound is returned when no catalog item has the requested ID
var ErrItemNotFound = errors.New("dataset item not found")

// Catalog provides read access to dataset items
type Catalog interface {
	List() []models.DatasetItem
	Get(id int) (models.DatasetItem, error)
	ByMaterial(material string) []models.DatasetItem
}

type staticCatalog struct {
	items []models.DatasetItem
}

var sampleItems = []models.DatasetItem{
	{ID: 1, Name: "Au_40nm_sample1.tif", Material: "Gold", Size: "40 nm", Peak: "532 nm"},
	{ID: 2, Name: "Au_60nm_sample2.tif", Material: "Gold", Size: "60 nm", Peak: "548 nm"},
	{ID: 3, Name: "Ag_30nm_sample1.tif", Material: "Silver", Size: "30 nm", Peak: "410 nm"},
	{ID: 4, Name: "Au_20nm_sample3.tif", Material: "Gold", Size: "20 nm", Peak: "518 nm"},
	{ID: 5, Name: "Ag_50nm_sample2.tif", Material: "Silver", Size: "50 nm", Peak: "435 nm"},
	{ID: 6, Name: "Au_80nm_sample4.tif", Material: "Gold", Size: "80 nm", Peak: "565 nm"},
}

// NewSampleCatalog returns the built-in sample dataset
func NewSampleCatalog() Catalog {
	return New(sampleItems)
}

// New returns a catalog over the given items
func New(items []models.DatasetItem) Catalog {
	return &staticCatalog{items: append([]models.DatasetItem(nil), items...)}
}

// List returns a copy of all items in catalog order
func (c *staticCatalog) List() []models.DatasetItem {
	return append([]models.DatasetItem(nil), c.items...)
}

// Get returns the item with the given ID
func (c *staticCatalog) Get(id int) (models.DatasetItem, error) {
	item, ok := lo.Find(c.items, func(it models.DatasetItem) bool {
		return it.ID == id
	})
	if !ok {
		return models.DatasetItem{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return item, nil
}

// ByMaterial returns the items of one material, case-insensitively
func (c *staticCatalog) ByMaterial(material string) []models.DatasetItem {
	return lo.Filter(c.items, func(it models.DatasetItem, _ int) bool {
		return strings.EqualFold(it.Material, material)
	})
}
