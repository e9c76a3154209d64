package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/clientimport/internal/core"
)

func newTemplateCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "template <operation>",
		Short: "Write the CSV template for an import operation",
		Long: "Prints the recognized header row plus one example row for the\n" +
			"named operation, ready to fill in and import.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, ok := core.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown import operation %q", args[0])
			}

			if outPath == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), def.TemplateCSV())
				return err
			}

			if err := os.WriteFile(outPath, []byte(def.TemplateCSV()), 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s template to %s\n", def.Key, outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the template to a file instead of stdout")

	return cmd
}
