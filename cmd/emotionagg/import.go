package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"emotionagg/internal/aggregate"
	"emotionagg/internal/grid"
	"emotionagg/internal/ingest"
	"emotionagg/internal/store"
)

// importRecord is one element of the JSON array accepted by import.
type importRecord struct {
	Subject   string         `json:"subject"`
	Date      string         `json:"date"`
	TimeBlock string         `json:"time_block"`
	Payload   map[string]any `json:"payload"`
}

func importCmd() *cobra.Command {
	var subject string
	var date string
	cmd := &cobra.Command{
		Use:   "import <payloads.json|dir>",
		Short: "Load slot payloads into the configured store",
		Long:  "Load slot payloads into the configured store.\n\n" +
			"A file is read as a JSON array of {subject, date, time_block, payload} records.\n" +
			"A directory is walked for <subject>/<YYYY-MM-DD>/<HH-MM>.json files.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], subject, date)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Default subject for file records; subject filter for directories")
	cmd.Flags().StringVar(&date, "date", "", "Default date for file records; date filter for directories")
	return cmd
}

func runImport(cmd *cobra.Command, path, subject, date string) error {
	ctx := cmd.Context()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return runImportDir(cmd, path, subject, date)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	var imported int
	var problems []error
	for i, record := range records {
		p, err := record.toPayload(subject, date)
		if err != nil {
			problems = append(problems, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if err := a.db.PutSlot(ctx, p); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		a.logger.Debug("imported slot payload",
			zap.String("subject", p.Subject), zap.String("date", p.Date), zap.String("time_block", p.TimeBlock))
		imported++
	}

	fmt.Fprintln(os.Stdout, "Import complete.")
	fmt.Fprintf(os.Stdout, "  Payloads stored:  %d\n", imported)
	fmt.Fprintf(os.Stdout, "  Records rejected: %d\n", len(problems))
	if len(problems) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(problems))
		for _, item := range problems {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("import completed with errors")
	}
	return nil
}

func (r importRecord) toPayload(defaultSubject, defaultDate string) (store.SlotPayload, error) {
	subject := strings.TrimSpace(r.Subject)
	if subject == "" {
		subject = strings.TrimSpace(defaultSubject)
	}
	if subject == "" {
		return store.SlotPayload{}, aggregate.ErrInvalidSubject
	}
	date := r.Date
	if date == "" {
		date = defaultDate
	}
	if err := aggregate.ValidateDate(date); err != nil {
		return store.SlotPayload{}, err
	}
	if !grid.IsSlot(r.TimeBlock) {
		return store.SlotPayload{}, fmt.Errorf("time_block %q is not a canonical HH-MM slot", r.TimeBlock)
	}
	if r.Payload == nil {
		return store.SlotPayload{}, fmt.Errorf("payload is required")
	}
	return store.SlotPayload{Subject: subject, Date: date, TimeBlock: r.TimeBlock, Body: r.Payload}, nil
}

func runImportDir(cmd *cobra.Command, root, subject, date string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	result, err := ingest.Run(ctx, []string{root}, a.db, ingest.Options{Subject: subject, Date: date}, a.logger)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Import complete.")
	fmt.Fprintf(os.Stdout, "  Payloads stored: %d\n", result.PayloadsStored)
	fmt.Fprintf(os.Stdout, "  Files skipped:   %d\n", result.FilesSkipped)
	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("import completed with errors")
	}
	return nil
}
