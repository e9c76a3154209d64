package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/clientimport/internal/core"
)

func newOperationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the registered import operations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs := core.All()

			if getOutputFormat(cmd) == "json" {
				type opInfo struct {
					Key      string   `json:"key"`
					Label    string   `json:"label"`
					KeyField string   `json:"keyField,omitempty"`
					Columns  []string `json:"columns"`
				}
				out := make([]opInfo, len(defs))
				for i, def := range defs {
					out[i] = opInfo{Key: def.Key, Label: def.Label, KeyField: def.KeyField, Columns: def.Columns()}
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "OPERATION\tLABEL\tKEY FIELD\tCOLUMNS")
			for _, def := range defs {
				keyField := def.KeyField
				if keyField == "" {
					keyField = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					def.Key, def.Label, keyField, strings.Join(def.Columns(), ","))
			}
			return tw.Flush()
		},
	}
}
