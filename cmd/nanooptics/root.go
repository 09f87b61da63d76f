package main

import (
	"github.com/spf13/cobra"

	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/logging"
)

// NewRootCmd builds the nanooptics command tree
func NewRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "nanooptics",
		Short:         "Browse sample micrographs, simulate spectra and query the prediction service.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Setup(logging.Options{Level: logLevel, Console: cmd.ErrOrStderr()})
			return err
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cat := catalog.NewSampleCatalog()
	root.AddCommand(
		NewDatasetsCmd(cat),
		NewSimulateCmd(cat),
		NewPredictCmd(),
		NewVersionCmd(),
	)
	return root
}
