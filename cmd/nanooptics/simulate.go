package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/render"
	"github.com/RMahshie/nanooptics/internal/simulator"
	"github.com/RMahshie/nanooptics/pkg/models"
)

type simulateOptions struct {
	datasetID int
	all       bool
	peak      string
	size      string
	material  string
	seed      uint64
	plot      string
	asJSON    bool
}

// NewSimulateCmd simulates spectra for catalog items or ad-hoc samples
func NewSimulateCmd(cat catalog.Catalog) *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the absorption spectrum of a sample.",
		Example: `  nanooptics simulate --dataset 1
  nanooptics simulate --peak "532 nm" --size "40 nm" --material Gold --plot gold.png
  nanooptics simulate --all --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, cat, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.datasetID, "dataset", 0, "catalog item ID to simulate")
	flags.BoolVar(&opts.all, "all", false, "simulate every catalog item")
	flags.StringVar(&opts.peak, "peak", "", `nominal resonance, e.g. "532 nm"`)
	flags.StringVar(&opts.size, "size", "", `particle diameter, e.g. "40 nm"`)
	flags.StringVar(&opts.material, "material", simulator.GoldMaterial, "particle material")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for reproducible output (0 draws from the global source)")
	flags.StringVar(&opts.plot, "plot", "", "write a PNG chart to this file (a directory with --all)")
	flags.BoolVar(&opts.asJSON, "json", false, "print the full spectrum as JSON")
	cmd.MarkFlagsMutuallyExclusive("dataset", "all", "peak")
	cmd.MarkFlagsRequiredTogether("peak", "size")
	return cmd
}

func runSimulate(cmd *cobra.Command, cat catalog.Catalog, opts simulateOptions) error {
	newSource := func() simulator.RandomSource { return simulator.GlobalSource }
	if opts.seed != 0 {
		newSource = simulator.NewSourceFunc(opts.seed)
	}

	var items []models.DatasetItem
	switch {
	case opts.all:
		items = cat.List()
	case opts.datasetID != 0:
		item, err := cat.Get(opts.datasetID)
		if err != nil {
			return err
		}
		items = []models.DatasetItem{item}
	case opts.peak != "":
		items = []models.DatasetItem{{
			Name:     "custom",
			Material: opts.material,
			Size:     opts.size,
			Peak:     opts.peak,
		}}
	default:
		return errors.New("one of --dataset, --all or --peak/--size is required")
	}

	results, err := simulator.GenerateAll(cmd.Context(), items, newSource, simulator.DefaultBatchLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	}

	for i, res := range results {
		printSummary(out, items[i].Name, res)
	}

	if opts.plot == "" {
		return nil
	}
	if !opts.all {
		return writePlot(out, opts.plot, results[0], items[0].Name)
	}
	if err := os.MkdirAll(opts.plot, 0o755); err != nil {
		return err
	}
	for i, res := range results {
		name := strings.TrimSuffix(items[i].Name, filepath.Ext(items[i].Name)) + ".png"
		if err := writePlot(out, filepath.Join(opts.plot, name), res, items[i].Name); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(w io.Writer, name string, res *models.SpectrumResult) {
	bold := color.New(color.Bold)
	confidence := "n/a"
	if res.Confidence != nil {
		confidence = fmt.Sprintf("%d%%", *res.Confidence)
	}
	fmt.Fprintf(w, "%s  peak %s nm  FWHM %s nm  confidence %s\n",
		bold.Sprint(name),
		color.CyanString("%g", res.Peak),
		color.CyanString("%.1f", res.FWHM),
		color.GreenString(confidence))
}

func writePlot(w io.Writer, path string, res *models.SpectrumResult, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.SpectrumPNG(f, res, title); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "chart written to %s\n", path)
	return nil
}
