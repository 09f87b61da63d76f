package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/simulator"
)

// NewDatasetsCmd lists the sample catalog
func NewDatasetsCmd(cat catalog.Catalog) *cobra.Command {
	var material string

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the sample TEM micrographs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := cat.List()
			if material != "" {
				items = cat.ByMaterial(material)
			}
			if len(items) == 0 {
				return fmt.Errorf("no dataset items for material %q", material)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tMATERIAL\tSIZE\tPEAK")
			for _, item := range items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					item.ID, item.Name, materialColor(item.Material).Sprint(item.Material), item.Size, item.Peak)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&material, "material", "", "only list items of this material")
	return cmd
}

func materialColor(material string) *color.Color {
	if material == simulator.GoldMaterial {
		return color.New(color.FgYellow)
	}
	return color.New(color.FgHiWhite)
}
