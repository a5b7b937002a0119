package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emotionagg/internal/adapter"
	"emotionagg/internal/emotion"
	"emotionagg/internal/store"
)

func scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <payload.json>",
		Short: "Score a single slot payload without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(args[0])
		},
	}
}

func runScore(path string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}
	body, err := store.DecodeBody(data)
	if err != nil {
		return err
	}

	selector, err := newSelector(cfg, logger)
	if err != nil {
		return err
	}
	vec, kind, err := selector.Adapt(body)
	if err != nil {
		return err
	}

	vocab := selector.Vocabulary()
	if kind == adapter.KindRawFeatures {
		vocab = emotion.Plutchik8
	}
	fmt.Fprintf(os.Stdout, "Adapter: %s\n", kind)
	fmt.Fprintf(os.Stdout, "Vocabulary: %s\n", vocab.Name)
	fmt.Fprintln(os.Stdout, "Scores:")
	printVector(os.Stdout, vocab, vec)
	fmt.Fprintf(os.Stdout, "Total: %s\n", formatScore(vec.Total()))
	return nil
}
