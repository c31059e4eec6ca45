package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"loom/internal/analysis"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze <transcript> <type>",
		Short: "Run one analysis type against a transcript",
		Long: "Runs the named analysis type against a transcript document. Missing\n" +
			"required prerequisites are generated first; types with a configured\n" +
			"judge pairing run the full draft/judge/improve loop.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.resolveTranscript(args[0])
			if err != nil {
				return err
			}
			analysisType := strings.TrimSpace(args[1])

			store, err := ctx.store()
			if err != nil {
				return err
			}
			doc, err := store.Load(path)
			if err != nil {
				return err
			}
			runner, err := ctx.analysisRunner()
			if err != nil {
				return err
			}

			outcome, err := runner.Run(cmd.Context(), store, doc, analysisType)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, outcome.Result)
			}

			out := cmd.OutOrStdout()
			if outcome.Result.Failed() {
				return fmt.Errorf("analysis failed: %s", outcome.Result.ErrMessage)
			}
			if len(outcome.AutoRan) > 0 {
				fmt.Fprintf(out, "Auto-ran prerequisites: %s\n\n", strings.Join(outcome.AutoRan, ", "))
			}
			fmt.Fprintln(out, analysis.FormatResult(outcome.Result))
			if outcome.Judge != nil && outcome.Judge.Failed() {
				fmt.Fprintf(out, "\nJudge failed (draft kept): %s\n", outcome.Judge.ErrMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw result as JSON")
	return cmd
}
