package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"loom/internal/analysis"
	"loom/internal/transcript"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var (
		analysisType string
		jsonOutput   bool
		showRounds   bool
	)

	cmd := &cobra.Command{
		Use:   "show <transcript>",
		Short: "Show a transcript's metadata and analysis results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.resolveTranscript(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.store()
			if err != nil {
				return err
			}
			doc, err := store.Load(path)
			if err != nil {
				return err
			}

			if analysisType != "" {
				return showAnalysis(cmd, doc, analysisType, jsonOutput)
			}
			if jsonOutput {
				return writeJSON(cmd, doc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:    %s\n", doc.Title)
			if doc.Decimal != "" {
				fmt.Fprintf(out, "Decimal:  %s\n", doc.Decimal)
			}
			if doc.Language != "" {
				fmt.Fprintf(out, "Language: %s\n", languageName(doc.Language))
			}
			if doc.RecordedAt != "" {
				fmt.Fprintf(out, "Recorded: %s\n", doc.RecordedAt)
			}
			if doc.DurationSeconds > 0 {
				fmt.Fprintf(out, "Duration: %s\n", formatDuration(doc.DurationSeconds))
			}

			keys := analysisSummary(doc, showRounds)
			if len(keys) == 0 {
				fmt.Fprintln(out, "\nNo analyses yet")
				return nil
			}
			fmt.Fprintln(out, "\nAnalyses:")
			for _, line := range keys {
				fmt.Fprintf(out, "  %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&analysisType, "type", "t", "", "Show one analysis result")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	cmd.Flags().BoolVar(&showRounds, "rounds", false, "Include versioned judge-loop snapshots")
	return cmd
}

func showAnalysis(cmd *cobra.Command, doc *transcript.Document, name string, jsonOutput bool) error {
	res, ok := doc.Analysis[name]
	if !ok {
		return fmt.Errorf("no %q analysis stored for this transcript", name)
	}
	if jsonOutput {
		return writeJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	if res.Failed() {
		fmt.Fprintf(out, "Analysis failed: %s\n", res.ErrMessage)
		return nil
	}
	fmt.Fprintln(out, analysis.FormatResult(res))
	if res.Round != nil {
		fmt.Fprintf(out, "\nRound: %d\n", *res.Round)
	}
	if res.History != nil && len(res.History.Scores) > 0 {
		fmt.Fprintln(out, "Judge scores:")
		for _, score := range res.History.Scores {
			fmt.Fprintf(out, "  round %d: %.1f\n", score.Round, score.Overall)
		}
	}
	return nil
}

// analysisSummary lists stored analysis keys, collapsing versioned round
// snapshots behind their alias unless asked for.
func analysisSummary(doc *transcript.Document, showRounds bool) []string {
	var lines []string
	for key, res := range doc.Analysis {
		if !showRounds && isRoundSnapshot(doc, key) {
			continue
		}
		label := key
		switch {
		case res.Failed():
			label += " (failed)"
		case res.Round != nil:
			label += fmt.Sprintf(" (round %d)", *res.Round)
		}
		lines = append(lines, label)
	}
	sort.Strings(lines)
	return lines
}

func isRoundSnapshot(doc *transcript.Document, key string) bool {
	idx := strings.LastIndex(key, "_")
	if idx <= 0 {
		return false
	}
	base := key[:idx]
	if _, ok := doc.Analysis[base]; !ok {
		return false
	}
	_, isRound := transcript.ParseRound(key, base)
	return isRound
}

func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}
