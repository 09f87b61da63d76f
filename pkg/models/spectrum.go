package models

// DatasetItem describes a labeled sample micrograph from the sample catalog
type DatasetItem struct {
	ID       int    `json:"id" doc:"Catalog item identifier"`
	Name     string `json:"name" example:"Au_40nm_sample1.tif" doc:"Sample file name"`
	Material string `json:"material" example:"Gold" doc:"Particle material"`
	Size     string `json:"size" example:"40 nm" doc:"Nominal particle diameter"`
	Peak     string `json:"peak" example:"532 nm" doc:"Nominal resonance wavelength"`
}

// SpectrumResult is an absorption spectrum with its derived metrics. The
// simulator and the external prediction service both produce this shape.
type SpectrumResult struct {
	Wavelengths []float64              `json:"wavelengths" doc:"Wavelengths in nm"`
	Spectrum    []float64              `json:"spectrum" doc:"Extinction values (a.u.), one per wavelength"`
	Peak        float64                `json:"peak" doc:"Resonance peak wavelength in nm"`
	FWHM        float64                `json:"fwhm" doc:"Full width at half maximum in nm"`
	Confidence  *int                   `json:"confidence,omitempty" minimum:"0" maximum:"98" doc:"Confidence percentage"`
	Features    map[string]interface{} `json:"features,omitempty" doc:"Descriptive features of the sample"`
}
