package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"emotionagg/internal/rules"
	"emotionagg/internal/validate"
)

func validateCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the rule set and stored day grids for consistency problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, subject)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Only check summaries for this subject")
	return cmd
}

func runValidate(cmd *cobra.Command, subject string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	report, err := validate.Run(ctx, rules.LoadOrEmpty(a.cfg.Rules, a.logger), a.db, subject)
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := "rules"
		if issue.Subject != "" {
			location = fmt.Sprintf("%s/%s", issue.Subject, issue.Date)
		}
		if issue.Slot != "" {
			location = fmt.Sprintf("%s @ %s", location, issue.Slot)
		}
		fmt.Fprintf(out, "  - [%s] %s: %s\n", issue.Code, location, issue.Message)
	}
}
