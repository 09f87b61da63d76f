package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/RMahshie/nanooptics/internal/predictor"
	"github.com/RMahshie/nanooptics/pkg/models"
)

// NewPredictCmd sends a local micrograph to the prediction service
func NewPredictCmd() *cobra.Command {
	var (
		image   string
		model   string
		url     string
		timeout time.Duration
		output  string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the spectrum of a local micrograph with the prediction service.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := predictor.NewClient(predictor.Config{BaseURL: url, Timeout: timeout})
			if err != nil {
				return err
			}

			f, err := os.Open(image)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := client.Predict(cmd.Context(), filepath.Base(image), f, model)
			if err != nil {
				return fmt.Errorf("%s: %w", predictor.Detail(err), err)
			}

			out := cmd.OutOrStdout()
			printSummary(out, filepath.Base(image), res)
			printFeatures(cmd, res)

			if output != "" {
				return writePlot(out, output, res, filepath.Base(image))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&image, "image", "", "micrograph to upload")
	flags.StringVar(&model, "model", models.DefaultModel, "prediction model name")
	flags.StringVar(&url, "url", envOr("PREDICTOR_URL", "http://localhost:8000"), "prediction service base URL")
	flags.DurationVar(&timeout, "timeout", 60*time.Second, "request timeout")
	flags.StringVar(&output, "output", "", "write a PNG chart of the prediction to this file")
	cmd.MarkFlagRequired("image")
	return cmd
}

func printFeatures(cmd *cobra.Command, res *models.SpectrumResult) {
	if len(res.Features) == 0 {
		return
	}
	keys := lo.Keys(res.Features)
	sort.Strings(keys)

	faint := color.New(color.Faint)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %v\n", faint.Sprintf("%s:", k), res.Features[k])
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
