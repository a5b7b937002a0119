package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func aggregateCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "aggregate <subject> <date>",
		Short: "Build and save the 48-slot emotion grid for one subject-day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregate(cmd, args[0], args[1], asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the grid as JSON")
	return cmd
}

func runAggregate(cmd *cobra.Command, subject, date string, asJSON bool) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	outcome, runErr := a.pipeline.Run(ctx, subject, date)
	if outcome == nil {
		return runErr
	}

	if asJSON {
		payload, err := json.MarshalIndent(outcome.Grid, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding grid: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(payload))
		return runErr
	}

	fmt.Fprintf(os.Stdout, "Aggregation %s: %s\n", outcome.RunID, outcome.Message)
	fmt.Fprintf(os.Stdout, "  Subject:         %s\n", outcome.Subject)
	fmt.Fprintf(os.Stdout, "  Date:            %s\n", outcome.Date)
	fmt.Fprintf(os.Stdout, "  Model:           %s (%s)\n", a.selector.Model(), outcome.Grid.Vocabulary.Name)
	fmt.Fprintf(os.Stdout, "  Processed slots: %d\n", outcome.ProcessedSlots)
	fmt.Fprintf(os.Stdout, "  Failed slots:    %d\n", outcome.FailedSlots)
	fmt.Fprintf(os.Stdout, "  Total points:    %s\n", formatScore(outcome.TotalEmotionPoints))
	fmt.Fprintf(os.Stdout, "  Grid length:     %d\n", outcome.GridLength)
	return runErr
}
