// Package cli implements the importctl command line tool: file imports,
// template generation, and schema migrations without going through the
// HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	_ "github.com/JonMunkholm/clientimport/internal/clients" // Register import operations
	"github.com/JonMunkholm/clientimport/internal/logging"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code. SIGINT and
// SIGTERM cancel the command context so an in-flight batch stops between
// rows instead of being killed mid-row.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var output string

	rootCmd := &cobra.Command{
		Use:           "importctl",
		Short:         "Client CSV import tool",
		Long:          "Command-line interface for importing client records from CSV files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			// .env is optional; a missing file is not an error
			_ = godotenv.Overload()
			// Keep slog quiet so command output stays parseable
			logging.Setup("error", "text")
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text or json")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newTemplateCmd())
	rootCmd.AddCommand(newOperationsCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// getOutputFormat returns the effective output format from the root
// command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output != "" && output != "text" && output != "json" {
		return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", output)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the importctl version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "importctl %s\n", version)
			return nil
		},
	}
}
