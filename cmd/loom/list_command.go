package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/catalog"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		decimalPrefix string
		titleContains string
		jsonOutput    bool
		noRebuild     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcripts from the catalog index",
		Long: "Rebuilds the SQLite catalog index from the transcript store and lists\n" +
			"the indexed documents. The index is derived data; the JSON documents\n" +
			"stay the source of truth.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer func() { _ = cat.Close() }()

			if !noRebuild {
				store, err := ctx.store()
				if err != nil {
					return err
				}
				if _, skipped, err := cat.Rebuild(cmd.Context(), store); err != nil {
					return err
				} else if skipped > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d unreadable documents\n", skipped)
				}
			}

			entries, err := cat.List(cmd.Context(), catalog.ListFilter{
				DecimalPrefix: decimalPrefix,
				TitleContains: titleContains,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, entries)
			}

			headers := []string{"Decimal", "Title", "Language", "Duration", "Analyses"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Decimal,
					entry.Title,
					entry.Language,
					formatDuration(entry.DurationSeconds),
					strings.Join(entry.AnalysisKeys, ", "),
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No transcripts found")
				return nil
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
			} else {
				fmt.Fprintln(out, renderPlain(headers, rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&decimalPrefix, "decimal", "", "Filter by decimal category prefix")
	cmd.Flags().StringVar(&titleContains, "title", "", "Filter by title substring")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit entries as JSON")
	cmd.Flags().BoolVar(&noRebuild, "no-rebuild", false, "Skip reindexing the store before listing")
	return cmd
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(seconds)
	minutes := total / 60
	secs := total % 60
	if minutes == 0 {
		return strconv.Itoa(secs) + "s"
	}
	return fmt.Sprintf("%dm%02ds", minutes, secs)
}
