package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

const summaryRounding = time.Second

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "batch <type>",
		Short: "Run one analysis type over every transcript in the store",
		Long: "Iterates the whole transcript store and runs the named analysis type\n" +
			"against each document. Per-transcript failures are reported and\n" +
			"counted; the batch continues to the next item.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.batchRunner()
			if err != nil {
				return err
			}

			summary, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s: %d succeeded, %d failed in %s\n",
				summary.RunID, summary.Succeeded, summary.Failed, summary.Duration.Round(summaryRounding))
			for _, item := range summary.Items {
				if item.Error == "" {
					continue
				}
				fmt.Fprintf(out, "  %s: %s\n", filepath.Base(item.Path), item.Error)
			}
			if summary.Failed > 0 {
				return fmt.Errorf("%d transcripts failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}
