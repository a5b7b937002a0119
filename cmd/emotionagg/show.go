package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emotionagg/internal/aggregate"
	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
)

func showCmd() *cobra.Command {
	var asJSON bool
	var all bool
	cmd := &cobra.Command{
		Use:   "show <subject> <date>",
		Short: "Display a saved day grid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], args[1], asJSON, all)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the stored grid JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Include slots with no signal")
	return cmd
}

func runShow(cmd *cobra.Command, subject, date string, asJSON, all bool) error {
	ctx := cmd.Context()
	if err := aggregate.ValidateDate(date); err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	summary, err := a.db.GetSummary(ctx, subject, date)
	if err != nil {
		return err
	}
	if summary == nil {
		fmt.Fprintf(os.Stdout, "No summary found for %s on %s.\n", subject, date)
		return nil
	}

	if asJSON {
		fmt.Fprintln(os.Stdout, string(summary.Grid))
		return nil
	}

	vocab, err := emotion.VocabularyByName(summary.Vocabulary)
	if err != nil {
		return err
	}
	g, err := grid.Decode(summary.Grid, vocab)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Subject: %s\n", summary.Subject)
	fmt.Fprintf(os.Stdout, "Date: %s\n", summary.Date)
	fmt.Fprintf(os.Stdout, "Vocabulary: %s\n", summary.Vocabulary)
	fmt.Fprintf(os.Stdout, "Processed at: %s\n\n", summary.ProcessedAt.Format("2006-01-02 15:04:05 MST"))
	printGrid(os.Stdout, g, all)
	return nil
}
