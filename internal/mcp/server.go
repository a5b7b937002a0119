package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"emotionagg/internal/adapter"
	"emotionagg/internal/aggregate"
	"emotionagg/internal/emotion"
	"emotionagg/internal/store"
)

// DayRunner runs the aggregation pipeline for one subject-day.
type DayRunner interface {
	Run(ctx context.Context, subject, date string) (*aggregate.Outcome, error)
}

type SummaryReader interface {
	GetSummary(ctx context.Context, subject, date string) (*store.Summary, error)
	ListSummaries(ctx context.Context, subject string) ([]store.SummaryRef, error)
}

type PayloadScorer interface {
	Vocabulary() emotion.Vocabulary
	Adapt(payload map[string]any) (emotion.Vector, adapter.Kind, error)
}

type Server struct {
	runner    DayRunner
	summaries SummaryReader
	scorer    PayloadScorer
	logger    *zap.Logger
	mcp       *sdk.Server
}

func NewServer(runner DayRunner, summaries SummaryReader, scorer PayloadScorer, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:    runner,
		summaries: summaries,
		scorer:    scorer,
		logger:    logger,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "emotionagg",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
