package validate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
	"emotionagg/internal/rules"
	"emotionagg/internal/store"
)

type mockReader struct {
	summaries map[string]*store.Summary
	listErr   error

	lastSubject string
}

func (m *mockReader) ListSummaries(ctx context.Context, subject string) ([]store.SummaryRef, error) {
	m.lastSubject = subject
	if m.listErr != nil {
		return nil, m.listErr
	}
	refs := make([]store.SummaryRef, 0, len(m.summaries))
	for _, s := range m.summaries {
		if subject != "" && s.Subject != subject {
			continue
		}
		refs = append(refs, store.SummaryRef{Subject: s.Subject, Date: s.Date, Vocabulary: s.Vocabulary})
	}
	return refs, nil
}

func (m *mockReader) GetSummary(ctx context.Context, subject, date string) (*store.Summary, error) {
	return m.summaries[subject+"/"+date], nil
}

func summaryFor(t *testing.T, subject, date string, g grid.DayGrid) *store.Summary {
	t.Helper()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal grid: %v", err)
	}
	return &store.Summary{Subject: subject, Date: date, Vocabulary: g.Vocabulary.Name, Grid: data}
}

func testRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	set, err := rules.Parse([]byte("emotions:\n  joy:\n    - { feature: Loudness_sma3, op: \">\", th: 0.6 }\n"), nil)
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	return set
}

func codes(report *Report) []string {
	out := make([]string, 0, len(report.Issues))
	for _, issue := range report.Issues {
		out = append(out, issue.Code)
	}
	return out
}

func TestRun_CleanSummary(t *testing.T) {
	g := grid.Build(map[string]emotion.Vector{"07-30": {emotion.Joy: 3}}, emotion.Plutchik8)
	reader := &mockReader{summaries: map[string]*store.Summary{
		"device-1/2025-06-26": summaryFor(t, "device-1", "2025-06-26", g),
	}}

	report, err := Run(context.Background(), testRules(t), reader, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", codes(report))
	}
}

func TestRun_EmptyRulesAndDay(t *testing.T) {
	reader := &mockReader{summaries: map[string]*store.Summary{
		"device-1/2025-06-26": summaryFor(t, "device-1", "2025-06-26", grid.Build(nil, emotion.Basic4)),
	}}

	report, err := Run(context.Background(), rules.Empty(), reader, "device-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(codes(report), ",")
	if got != codeRulesEmpty+","+codeEmptyDay {
		t.Fatalf("unexpected codes: %s", got)
	}
	for _, issue := range report.Issues {
		if issue.Severity != SeverityWarn {
			t.Fatalf("expected warnings only, got %+v", issue)
		}
	}
	if reader.lastSubject != "device-1" {
		t.Fatalf("expected subject filter to reach the reader")
	}
}

func TestRun_BrokenSummaries(t *testing.T) {
	short := &store.Summary{Subject: "a", Date: "2025-06-26", Vocabulary: "basic4", Grid: []byte(`[{"time":"00:00","neutral":0,"joy":0,"anger":0,"sadness":0}]`)}
	unknown := &store.Summary{Subject: "b", Date: "2025-06-26", Vocabulary: "ekman6", Grid: []byte(`[]`)}
	garbage := &store.Summary{Subject: "c", Date: "2025-06-26", Vocabulary: "basic4", Grid: []byte(`{"time":"00:00"}`)}

	var entries []map[string]any
	if err := json.Unmarshal(summaryFor(t, "d", "2025-06-26", grid.Build(map[string]emotion.Vector{"12-00": {emotion.Joy: 1}}, emotion.Basic4)).Grid, &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	entries[0]["time"] = "00:30"
	delete(entries[1], emotion.Anger)
	entries[1]["disgust"] = 1.0
	entries[2][emotion.Joy] = -1.0
	tampered, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mixed := &store.Summary{Subject: "d", Date: "2025-06-26", Vocabulary: "basic4", Grid: tampered}

	reader := &mockReader{summaries: map[string]*store.Summary{
		"a/2025-06-26": short,
		"b/2025-06-26": unknown,
		"c/2025-06-26": garbage,
		"d/2025-06-26": mixed,
	}}

	report, err := Run(context.Background(), testRules(t), reader, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bySubject := map[string][]string{}
	for _, issue := range report.Issues {
		if issue.Severity != SeverityError {
			t.Fatalf("expected errors only, got %+v", issue)
		}
		bySubject[issue.Subject] = append(bySubject[issue.Subject], issue.Code)
	}
	expect := map[string]string{
		"a": codeGridLength,
		"b": codeVocabularyUnknown,
		"c": codeGridUndecodable,
		"d": strings.Join([]string{codeSlotTimeMismatch, codeLabelSetMismatch, codeScoreInvalid}, ","),
	}
	for subject, want := range expect {
		if got := strings.Join(bySubject[subject], ","); got != want {
			t.Fatalf("subject %s: expected %s, got %s", subject, want, got)
		}
	}
}

func TestRun_ListError(t *testing.T) {
	reader := &mockReader{listErr: errors.New("connection refused")}
	if _, err := Run(context.Background(), testRules(t), reader, ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun_RequiresReader(t *testing.T) {
	if _, err := Run(context.Background(), testRules(t), nil, ""); err == nil {
		t.Fatalf("expected error")
	}
}
