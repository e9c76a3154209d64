package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/clientimport/internal/config"
	"github.com/JonMunkholm/clientimport/internal/core"
	"github.com/JonMunkholm/clientimport/internal/csv"
	"github.com/JonMunkholm/clientimport/internal/store"
)

func newImportCmd() *cobra.Command {
	var (
		operation string
		commit    bool
		workers   int
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Validate or apply a client CSV file",
		Long: "Parses a CSV file and runs it through the named import operation.\n" +
			"Without --commit this is a dry run: every row is validated and diffed\n" +
			"against the database but nothing is written.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, ok := core.Get(operation)
			if !ok {
				return fmt.Errorf("unknown import operation %q", operation)
			}

			// 1. Read and parse the file.
			text, err := readCSVFile(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return core.ErrEmptyFile
			}

			rows, err := parseRows(text, delimiter)
			if err != nil {
				return err
			}
			records := csv.MapRecords(rows)

			// 2. Connect to the database.
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			ctx := cmd.Context()
			st, err := store.Connect(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer st.Close()

			// 3. Run the batch.
			mode := core.ModePreview
			if commit {
				mode = core.ModeCommit
			}
			if workers <= 0 {
				workers = cfg.Import.Workers
			}

			progress := func(done, total int) {}
			if getOutputFormat(cmd) != "json" {
				progress = func(done, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "processed %d/%d rows\n", done, total)
				}
			}

			runner := core.NewRunner(st.Applier(def),
				core.WithWorkers(workers),
				core.WithProgress(progress, cfg.Import.ProgressInterval),
			)
			result := runner.Run(ctx, records, mode)

			if mode == core.ModeCommit {
				if _, err := st.RecordRun(ctx, def.Key, result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: record import run: %v\n", err)
				}
			}

			// 4. Report.
			if getOutputFormat(cmd) == "json" {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printBatchSummary(cmd.OutOrStdout(), def.Key, result)
			}

			if result.FailedCount > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&operation, "operation", "create", "Import operation to run (create or update)")
	cmd.Flags().BoolVar(&commit, "commit", false, "Apply changes instead of previewing them")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (0 uses the configured default)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "auto", "Field delimiter: auto, comma, or semicolon")

	return cmd
}

// readCSVFile reads a file through the sanitizing reader so broken
// encodings cannot poison the tokenizer.
func readCSVFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(csv.NewSanitizingReader(f))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func parseRows(text, delimiter string) ([][]string, error) {
	switch delimiter {
	case "auto":
		return csv.Parse(text), nil
	case "comma":
		return csv.ParseWith(text, csv.Comma), nil
	case "semicolon":
		return csv.ParseWith(text, csv.Semicolon), nil
	default:
		return nil, fmt.Errorf("unknown delimiter %q: use auto, comma, or semicolon", delimiter)
	}
}

// printBatchSummary writes a human-readable run report: one line per
// failed row, then the totals.
func printBatchSummary(w io.Writer, operation string, result *core.BatchResult) {
	for _, outcome := range result.Results {
		if !outcome.Success {
			fmt.Fprintf(w, "row %d: %s\n", outcome.RowNumber, outcome.Error)
		}
	}

	verb := "valid"
	if result.Mode == core.ModeCommit {
		verb = "applied"
	}
	fmt.Fprintf(w, "%s %s: %d rows requested, %d %s, %d failed\n",
		operation, result.Mode, result.RequestedCount, result.SuccessCount, verb, result.FailedCount)
}
