package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTypesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List and validate analysis type definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			names, err := registry.Names()
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			headers := []string{"Type", "Requires", "Judge", "Description"}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				def, err := registry.Load(name)
				if err != nil {
					return err
				}
				judge := ""
				if pair, ok := cfg.JudgePairFor(name); ok {
					judge = fmt.Sprintf("%s (max %d rounds)", pair.Judge, pair.MaxRounds)
				}
				rows = append(rows, []string{
					name,
					strings.Join(def.Requires, ", "),
					judge,
					def.Description,
				})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No analysis types defined")
				return nil
			}
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable(headers, rows, nil))
			} else {
				fmt.Fprintln(out, renderPlain(headers, rows))
			}
			return nil
		},
	}

	cmd.AddCommand(newTypesCheckCommand(ctx))
	cmd.AddCommand(newTypesHealthCommand(ctx))
	return cmd
}

func newTypesCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every analysis type definition",
		Long: "Loads every definition and verifies that requires and optional_inputs\n" +
			"reference real types and that the requires graph has no cycles.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ctx.registry()
			if err != nil {
				return err
			}
			if err := registry.Validate(); err != nil {
				return err
			}
			names, err := registry.Names()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d analysis types valid\n", len(names))
			return nil
		},
	}
}

func newTypesHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the configured LLM endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.HealthCheck(cmd.Context()); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "LLM endpoint healthy (model %s)\n", client.Model())
			return nil
		},
	}
}
