// Package aggregate turns a subject-day of slot payloads into a day grid.
//
// The Aggregator fetches and scores slots; the Pipeline wraps it with
// validation, grid assembly and persistence.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"emotionagg/internal/adapter"
	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
	"emotionagg/internal/store"
)

const (
	DefaultConcurrency = 8
	DefaultSlotTimeout = 30 * time.Second
)

type Options struct {
	Concurrency int
	SlotTimeout time.Duration
	// RequestsPerSecond caps fallback FetchSlot calls. Zero means unlimited.
	RequestsPerSecond float64
}

// Scorer converts one slot payload into a vector. *adapter.Selector is the
// production implementation.
type Scorer interface {
	Vocabulary() emotion.Vocabulary
	Adapt(payload map[string]any) (emotion.Vector, adapter.Kind, error)
}

type Aggregator struct {
	source  store.SlotSource
	scorer  Scorer
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Result is the sparse outcome of one aggregation. Slots holds a vector for
// every slot that had a payload, including failed slots as zero vectors.
type Result struct {
	Slots      map[string]emotion.Vector
	Processed  int
	Failed     int
	TotalScore float64
}

func New(source store.SlotSource, scorer Scorer, opts Options, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Concurrency > grid.SlotsPerDay {
		opts.Concurrency = grid.SlotsPerDay
	}
	if opts.SlotTimeout <= 0 {
		opts.SlotTimeout = DefaultSlotTimeout
	}
	a := &Aggregator{
		source: source,
		scorer: scorer,
		opts:   opts,
		logger: logger,
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		a.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return a
}

func (a *Aggregator) Vocabulary() emotion.Vocabulary {
	return a.scorer.Vocabulary()
}

func (a *Aggregator) Aggregate(ctx context.Context, subject, date string) (*Result, error) {
	payloads := a.fetchDay(ctx, subject, date)
	if countPresent(payloads) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregating %s/%s: %w", subject, date, err)
		}
		a.logger.Debug("bulk fetch returned nothing, falling back to per-slot fetch",
			zap.String("subject", subject), zap.String("date", date))
		payloads = a.fetchSlots(ctx, subject, date)
	}

	vectors := make([]emotion.Vector, grid.SlotsPerDay)
	failed := make([]bool, grid.SlotsPerDay)
	for i, p := range payloads {
		if p == nil {
			continue
		}
		vec, err := a.adaptSlot(p)
		if err != nil {
			a.logger.Warn("slot scoring failed, recording zero vector",
				zap.String("subject", subject),
				zap.String("date", date),
				zap.String("slot", p.TimeBlock),
				zap.Error(err))
			vec = a.scorer.Vocabulary().Zero()
			failed[i] = true
		}
		vectors[i] = vec
	}

	result := &Result{Slots: make(map[string]emotion.Vector)}
	slots := grid.Slots()
	for i, vec := range vectors {
		if vec == nil {
			continue
		}
		result.Slots[slots[i]] = vec
		if failed[i] {
			result.Failed++
			continue
		}
		result.Processed++
		result.TotalScore += vec.Total()
	}

	a.logger.Info("aggregated day",
		zap.String("subject", subject),
		zap.String("date", date),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Float64("total_score", result.TotalScore))
	return result, nil
}

// fetchDay indexes the bulk payloads by slot. Payloads outside the canonical
// slots are skipped; for duplicates the later row wins.
func (a *Aggregator) fetchDay(ctx context.Context, subject, date string) []*store.SlotPayload {
	out := make([]*store.SlotPayload, grid.SlotsPerDay)
	day, err := a.source.FetchDay(ctx, subject, date)
	if err != nil {
		a.logger.Warn("bulk fetch failed",
			zap.String("subject", subject), zap.String("date", date), zap.Error(err))
		return out
	}
	for i := range day {
		p := day[i]
		idx := grid.SlotIndex(p.TimeBlock)
		if idx < 0 {
			a.logger.Warn("skipping payload with non-canonical time block",
				zap.String("subject", subject), zap.String("date", date), zap.String("time_block", p.TimeBlock))
			continue
		}
		if out[idx] != nil {
			a.logger.Debug("duplicate payload for slot, keeping the later one", zap.String("slot", p.TimeBlock))
		}
		out[idx] = &p
	}
	return out
}

// fetchSlots requests every canonical slot individually. Workers write only
// their own index and always return nil so one slot cannot cancel another.
func (a *Aggregator) fetchSlots(ctx context.Context, subject, date string) []*store.SlotPayload {
	out := make([]*store.SlotPayload, grid.SlotsPerDay)

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, slot := range grid.Slots() {
		g.Go(func() error {
			if a.limiter != nil {
				if err := a.limiter.Wait(ctx); err != nil {
					a.logger.Debug("rate limiter wait aborted", zap.String("slot", slot), zap.Error(err))
					return nil
				}
			}
			slotCtx, cancel := context.WithTimeout(ctx, a.opts.SlotTimeout)
			defer cancel()

			p, err := a.fetchSlot(slotCtx, subject, date, slot)
			if err != nil {
				a.logger.Warn("slot fetch failed",
					zap.String("subject", subject),
					zap.String("date", date),
					zap.String("slot", slot),
					zap.Error(err))
				return nil
			}
			if p != nil && p.TimeBlock == "" {
				p.TimeBlock = slot
			}
			out[i] = p
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Aggregator) fetchSlot(ctx context.Context, subject, date, slot string) (p *store.SlotPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("panic fetching slot %s: %v", slot, r)
		}
	}()
	return a.source.FetchSlot(ctx, subject, date, slot)
}

func (a *Aggregator) adaptSlot(p *store.SlotPayload) (vec emotion.Vector, err error) {
	defer func() {
		if r := recover(); r != nil {
			vec, err = nil, fmt.Errorf("panic scoring slot %s: %v", p.TimeBlock, r)
		}
	}()
	if p.DecodeErr != nil {
		return nil, p.DecodeErr
	}
	vec, kind, err := a.scorer.Adapt(p.Body)
	if err != nil {
		return nil, err
	}
	if vec == nil {
		vec = a.scorer.Vocabulary().Zero()
	}
	a.logger.Debug("scored slot", zap.String("slot", p.TimeBlock), zap.Stringer("adapter", kind))
	return vec, nil
}

func countPresent(payloads []*store.SlotPayload) int {
	n := 0
	for _, p := range payloads {
		if p != nil {
			n++
		}
	}
	return n
}
