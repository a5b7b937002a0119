// Package validate checks stored day grids and the active rule set for
// consistency problems.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
	"emotionagg/internal/rules"
	"emotionagg/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeRulesEmpty        = "rules_empty"
	codeVocabularyUnknown = "vocabulary_unknown"
	codeGridUndecodable   = "grid_undecodable"
	codeGridLength        = "grid_length_invalid"
	codeSlotTimeMismatch  = "slot_time_mismatch"
	codeLabelSetMismatch  = "label_set_mismatch"
	codeScoreInvalid      = "score_invalid"
	codeEmptyDay          = "empty_day"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Subject  string
	Date     string
	Slot     string
}

type Report struct {
	Issues []Issue
}

type SummaryReader interface {
	ListSummaries(ctx context.Context, subject string) ([]store.SummaryRef, error)
	GetSummary(ctx context.Context, subject, date string) (*store.Summary, error)
}

// Run checks every stored summary, or only those of subject when it is set.
func Run(ctx context.Context, set *rules.RuleSet, db SummaryReader, subject string) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("summary reader is required")
	}

	issues := make([]Issue, 0)
	if set == nil || set.Len() == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeRulesEmpty,
			Message:  "rule set is empty; raw feature payloads will score zero",
		})
	}

	refs, err := db.ListSummaries(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}

	for _, ref := range refs {
		summary, err := db.GetSummary(ctx, ref.Subject, ref.Date)
		if err != nil {
			return nil, fmt.Errorf("get summary %s/%s: %w", ref.Subject, ref.Date, err)
		}
		if summary == nil {
			continue
		}
		issues = append(issues, validateSummary(summary)...)
	}

	return &Report{Issues: issues}, nil
}

func validateSummary(summary *store.Summary) []Issue {
	issue := func(severity Severity, code, slot, message string) Issue {
		return Issue{
			Severity: severity,
			Code:     code,
			Message:  message,
			Subject:  summary.Subject,
			Date:     summary.Date,
			Slot:     slot,
		}
	}

	vocab, err := emotion.VocabularyByName(summary.Vocabulary)
	if err != nil {
		return []Issue{issue(SeverityError, codeVocabularyUnknown, "", fmt.Sprintf("unknown vocabulary %q", summary.Vocabulary))}
	}

	var entries []map[string]any
	if err := json.Unmarshal(summary.Grid, &entries); err != nil {
		return []Issue{issue(SeverityError, codeGridUndecodable, "", fmt.Sprintf("grid is not a list of slot objects: %v", err))}
	}
	if len(entries) != grid.SlotsPerDay {
		return []Issue{issue(SeverityError, codeGridLength, "", fmt.Sprintf("grid has %d slots, expected %d", len(entries), grid.SlotsPerDay))}
	}

	var issues []Issue
	var total float64
	for i, slot := range grid.Slots() {
		entry := entries[i]
		want := grid.DisplayTime(slot)
		if got, _ := entry["time"].(string); got != want {
			issues = append(issues, issue(SeverityError, codeSlotTimeMismatch, want, fmt.Sprintf("entry %d has time %q, expected %q", i, got, want)))
		}

		if missing, extra := labelDiff(entry, vocab); len(missing) > 0 || len(extra) > 0 {
			issues = append(issues, issue(SeverityError, codeLabelSetMismatch, want,
				fmt.Sprintf("labels differ from %s: missing [%s], unexpected [%s]", vocab.Name, strings.Join(missing, ", "), strings.Join(extra, ", "))))
		}

		for _, label := range vocab.Labels {
			raw, ok := entry[label]
			if !ok {
				continue
			}
			score, ok := raw.(float64)
			if !ok || score < 0 {
				issues = append(issues, issue(SeverityError, codeScoreInvalid, want, fmt.Sprintf("%s score %v is not a non-negative number", label, raw)))
				continue
			}
			total += score
		}
	}

	if total == 0 {
		issues = append(issues, issue(SeverityWarn, codeEmptyDay, "", "every slot is zero"))
	}
	return issues
}

func labelDiff(entry map[string]any, vocab emotion.Vocabulary) (missing, extra []string) {
	for _, label := range vocab.Labels {
		if _, ok := entry[label]; !ok {
			missing = append(missing, label)
		}
	}
	for key := range entry {
		if key != "time" && !vocab.Has(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return missing, extra
}
