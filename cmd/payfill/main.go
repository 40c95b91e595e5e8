package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	claudeagent "payfill/internal/agent/claude"
	"payfill/internal/budget"
	"payfill/internal/config"
	"payfill/internal/domain"
	"payfill/internal/pipeline"
	"payfill/internal/port"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "payfill",
		Short:   "Payfill - financial document extraction for payment forms",
		Version: version,
	}

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(budgetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func processCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Run the extraction pipeline on a document image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			contentType := contentTypeFor(path)
			if contentType == "" {
				return fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
			}

			tracker := budget.NewTracker(cfg.Budget.DailyLimitUSD)
			runner := pipeline.NewRunner(
				claudeagent.NewExtractAgent(&cfg.Agent.Extract),
				budget.NewGuardedScoringAgent(claudeagent.NewScoreAgent(&cfg.Agent.Score), tracker),
			)

			var sink port.ProgressSink
			if !outputJSON {
				sink = port.ProgressFunc(func(event port.ProgressEvent) {
					fmt.Printf("  [%s] %s\n", event.Step, event.Message)
				})
			}

			state := runner.Run(cmd.Context(), pipeline.RunInput{
				ImageBytes:  data,
				ContentType: contentType,
				FileName:    filepath.Base(path),
			}, sink)

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			}
			printSummary(state)
			if state.Status != domain.PipelineStatusComplete {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&outputJSON, "json", "j", false, "Print the full pipeline state as JSON")
	return cmd
}

func budgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Show the configured daily scoring budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			tracker := budget.NewTracker(cfg.Budget.DailyLimitUSD)
			status := tracker.Snapshot()
			fmt.Printf("Date:      %s\n", status.Date)
			fmt.Printf("Limit:     $%.2f\n", status.LimitUSD)
			fmt.Printf("Spent:     $%.4f (this process)\n", status.SpentUSD)
			fmt.Printf("Remaining: $%.4f\n", status.RemainingUSD)
			return nil
		},
	}
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}

func printSummary(state *domain.PipelineState) {
	fmt.Printf("\nStatus: %s\n", state.Status)
	if state.Formatted != nil {
		fmt.Println("\nForm fields:")
		for field, value := range state.Formatted.FormFields {
			fmt.Printf("  %-18s %v\n", field+":", value)
		}
		if len(state.Formatted.ReviewRequired) > 0 {
			fmt.Println("\nRequires review:")
			for _, item := range state.Formatted.ReviewRequired {
				fmt.Printf("  %s = %v (%.2f): %s\n", item.Field, item.Value, item.Confidence, item.Reasoning)
			}
		}
		for _, w := range state.Formatted.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		fmt.Printf("\nReady to fill: %v\n", state.Formatted.ReadyToFill)
	}
	for _, e := range state.Errors {
		if e.Error != "" {
			fmt.Printf("error [%s]: %s\n", e.Step, e.UserMessage)
		}
	}
	fmt.Printf("Cost: $%.4f\n", state.Costs.Total)
}
