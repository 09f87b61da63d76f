package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/RMahshie/nanooptics/internal/api"
)

// NewVersionCmd ...
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nanooptics %s (%s %s/%s)\n", api.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
