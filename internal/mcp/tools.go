package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"emotionagg/internal/adapter"
	"emotionagg/internal/aggregate"
	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
	"emotionagg/internal/store"
)

type AggregateDayInput struct {
	Subject string `json:"subject" jsonschema:"device or user identifier"`
	Date    string `json:"date" jsonschema:"day to aggregate, YYYY-MM-DD"`
}

type GetSummaryInput struct {
	Subject string `json:"subject" jsonschema:"device or user identifier"`
	Date    string `json:"date" jsonschema:"day of the summary, YYYY-MM-DD"`
}

type ListSummariesInput struct {
	Subject string `json:"subject,omitempty" jsonschema:"restrict to one subject"`
}

type ScoreFeaturesInput struct {
	Payload map[string]any `json:"payload" jsonschema:"slot payload with features, features_timeline, emotion_scores or emotion_extractor_result"`
}

type GridEntryOutput struct {
	Time   string             `json:"time"`
	Scores map[string]float64 `json:"scores"`
}

type AggregateDayOutput struct {
	RunID              string            `json:"run_id"`
	Subject            string            `json:"subject"`
	Date               string            `json:"date"`
	HasData            bool              `json:"has_data"`
	ProcessedSlots     int               `json:"processed_slots"`
	FailedSlots        int               `json:"failed_slots"`
	TotalEmotionPoints float64           `json:"total_emotion_points"`
	GridLength         int               `json:"emotion_graph_length"`
	Message            string            `json:"message"`
	Vocabulary         string            `json:"vocabulary"`
	Grid               []GridEntryOutput `json:"grid"`
}

type SummaryOutput struct {
	Subject     string            `json:"subject"`
	Date        string            `json:"date"`
	Vocabulary  string            `json:"vocabulary"`
	ProcessedAt string            `json:"processed_at"`
	Grid        []GridEntryOutput `json:"grid"`
}

type SummaryRefOutput struct {
	Subject     string `json:"subject"`
	Date        string `json:"date"`
	Vocabulary  string `json:"vocabulary"`
	ProcessedAt string `json:"processed_at"`
}

type ListSummariesOutput struct {
	Summaries []SummaryRefOutput `json:"summaries"`
}

type ScoreFeaturesOutput struct {
	Adapter    string             `json:"adapter"`
	Vocabulary string             `json:"vocabulary"`
	Scores     map[string]float64 `json:"scores"`
	Total      float64            `json:"total"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "aggregate_day",
		Description: "Score every time slot of a subject-day and save the 48-slot emotion grid",
	}, s.handleAggregateDay)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_summary",
		Description: "Return the saved emotion grid for a subject-day",
	}, s.handleGetSummary)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_summaries",
		Description: "List saved day summaries, optionally for one subject",
	}, s.handleListSummaries)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "score_features",
		Description: "Score a single slot payload without saving anything",
	}, s.handleScoreFeatures)
}

func (s *Server) handleAggregateDay(ctx context.Context, req *sdk.CallToolRequest, input AggregateDayInput) (*sdk.CallToolResult, AggregateDayOutput, error) {
	if input.Subject == "" {
		return nil, AggregateDayOutput{}, fmt.Errorf("subject is required")
	}
	outcome, err := s.runner.Run(ctx, input.Subject, input.Date)
	if err != nil {
		if errors.Is(err, aggregate.ErrPersist) && outcome != nil {
			s.logger.Warn("aggregate_day could not save grid", zap.Error(err))
			// the grid was built, so hand it back with the tool marked as failed
			return &sdk.CallToolResult{
				IsError: true,
				Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
			}, aggregateDayOutputFromOutcome(outcome), nil
		}
		return nil, AggregateDayOutput{}, err
	}
	return nil, aggregateDayOutputFromOutcome(outcome), nil
}

func (s *Server) handleGetSummary(ctx context.Context, req *sdk.CallToolRequest, input GetSummaryInput) (*sdk.CallToolResult, SummaryOutput, error) {
	if input.Subject == "" {
		return nil, SummaryOutput{}, fmt.Errorf("subject is required")
	}
	if err := aggregate.ValidateDate(input.Date); err != nil {
		return nil, SummaryOutput{}, err
	}
	summary, err := s.summaries.GetSummary(ctx, input.Subject, input.Date)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	if summary == nil {
		return nil, SummaryOutput{}, fmt.Errorf("summary not found")
	}
	return summaryOutputFromStore(summary)
}

func (s *Server) handleListSummaries(ctx context.Context, req *sdk.CallToolRequest, input ListSummariesInput) (*sdk.CallToolResult, ListSummariesOutput, error) {
	refs, err := s.summaries.ListSummaries(ctx, input.Subject)
	if err != nil {
		return nil, ListSummariesOutput{}, err
	}

	output := make([]SummaryRefOutput, 0, len(refs))
	for _, ref := range refs {
		output = append(output, SummaryRefOutput{
			Subject:     ref.Subject,
			Date:        ref.Date,
			Vocabulary:  ref.Vocabulary,
			ProcessedAt: formatTime(ref.ProcessedAt),
		})
	}
	return nil, ListSummariesOutput{Summaries: output}, nil
}

func (s *Server) handleScoreFeatures(ctx context.Context, req *sdk.CallToolRequest, input ScoreFeaturesInput) (*sdk.CallToolResult, ScoreFeaturesOutput, error) {
	if len(input.Payload) == 0 {
		return nil, ScoreFeaturesOutput{}, fmt.Errorf("payload is required")
	}
	vec, kind, err := s.scorer.Adapt(input.Payload)
	if err != nil {
		return nil, ScoreFeaturesOutput{}, err
	}
	return nil, ScoreFeaturesOutput{
		Adapter:    kind.String(),
		Vocabulary: vocabularyFor(kind, s.scorer.Vocabulary()).Name,
		Scores:     map[string]float64(vec.Clone()),
		Total:      vec.Total(),
	}, nil
}

func aggregateDayOutputFromOutcome(outcome *aggregate.Outcome) AggregateDayOutput {
	if outcome == nil {
		return AggregateDayOutput{}
	}
	return AggregateDayOutput{
		RunID:              outcome.RunID,
		Subject:            outcome.Subject,
		Date:               outcome.Date,
		HasData:            outcome.HasData,
		ProcessedSlots:     outcome.ProcessedSlots,
		FailedSlots:        outcome.FailedSlots,
		TotalEmotionPoints: outcome.TotalEmotionPoints,
		GridLength:         outcome.GridLength,
		Message:            outcome.Message,
		Vocabulary:         outcome.Grid.Vocabulary.Name,
		Grid:               gridOutput(outcome.Grid),
	}
}

func summaryOutputFromStore(summary *store.Summary) (*sdk.CallToolResult, SummaryOutput, error) {
	vocab, err := emotion.VocabularyByName(summary.Vocabulary)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	g, err := grid.Decode(summary.Grid, vocab)
	if err != nil {
		return nil, SummaryOutput{}, err
	}
	return nil, SummaryOutput{
		Subject:     summary.Subject,
		Date:        summary.Date,
		Vocabulary:  vocab.Name,
		ProcessedAt: formatTime(summary.ProcessedAt),
		Grid:        gridOutput(g),
	}, nil
}

func gridOutput(g grid.DayGrid) []GridEntryOutput {
	out := make([]GridEntryOutput, 0, len(g.Entries))
	for _, entry := range g.Entries {
		out = append(out, GridEntryOutput{
			Time:   entry.Time,
			Scores: map[string]float64(entry.Scores.Clone()),
		})
	}
	return out
}

// Raw feature payloads always score in the 8-label vocabulary, whatever the
// configured model.
func vocabularyFor(kind adapter.Kind, configured emotion.Vocabulary) emotion.Vocabulary {
	if kind == adapter.KindRawFeatures {
		return emotion.Plutchik8
	}
	return configured
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
