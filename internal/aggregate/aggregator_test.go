package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"emotionagg/internal/adapter"
	"emotionagg/internal/emotion"
	"emotionagg/internal/grid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSelector(t *testing.T, model string) *adapter.Selector {
	t.Helper()
	s, err := adapter.NewSelector(model, nil)
	require.NoError(t, err)
	return s
}

func TestAggregateBulk(t *testing.T) {
	src := &fakeSource{day: rows(
		payload("07-00", scores("hap", 0.5)),
		payload("07-30", scores("hap", 0.25, "neu", 0.25)),
		payload("25-00", scores("hap", 1.0)),
		payload("07-00", scores("hap", 1.0)),
	)}
	agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{}, zaptest.NewLogger(t))

	result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
	require.NoError(t, err)

	assert.Len(t, result.Slots, 2)
	assert.Equal(t, 1.0, result.Slots["07-00"][emotion.Joy], "later duplicate wins")
	assert.Equal(t, 0.25, result.Slots["07-30"][emotion.Neutral])
	assert.Equal(t, 2, result.Processed)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 1.5, result.TotalScore)
	assert.Zero(t, src.slotCallCount(), "bulk data must not trigger per-slot fetches")
}

func TestAggregateFallback(t *testing.T) {
	t.Run("empty bulk fetch", func(t *testing.T) {
		src := &fakeSource{slots: map[string]map[string]any{
			"12-30": scores("sad", 0.5),
		}}
		agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{Concurrency: 4}, zaptest.NewLogger(t))

		result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
		require.NoError(t, err)

		assert.Equal(t, grid.SlotsPerDay, src.slotCallCount())
		assert.ElementsMatch(t, grid.Slots(), src.slotCalls)
		require.Len(t, result.Slots, 1)
		assert.Equal(t, 0.5, result.Slots["12-30"][emotion.Sadness])
		assert.Equal(t, 1, result.Processed)
	})

	t.Run("bulk fetch error", func(t *testing.T) {
		src := &fakeSource{
			dayErr: errors.New("connection reset"),
			slots:  map[string]map[string]any{"00-00": scores("hap", 0.5)},
		}
		agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{}, zaptest.NewLogger(t))

		result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
		require.NoError(t, err)
		assert.Equal(t, grid.SlotsPerDay, src.slotCallCount())
		assert.Contains(t, result.Slots, "00-00")
	})

	t.Run("only non-canonical bulk rows", func(t *testing.T) {
		src := &fakeSource{day: rows(payload("07-15", scores("hap", 0.5)))}
		agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{}, zaptest.NewLogger(t))

		result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
		require.NoError(t, err)
		assert.Equal(t, grid.SlotsPerDay, src.slotCallCount())
		assert.Empty(t, result.Slots)
	})

	t.Run("slot errors and panics are isolated", func(t *testing.T) {
		src := &fakeSource{
			slots:     map[string]map[string]any{"03-00": scores("hap", 0.5), "02-00": scores("hap", 1.0)},
			slotErrs:  map[string]error{"01-00": errors.New("timeout")},
			panicSlot: "02-00",
		}
		agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{Concurrency: 48}, zaptest.NewLogger(t))

		result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
		require.NoError(t, err)
		require.Len(t, result.Slots, 1)
		assert.Equal(t, 0.5, result.Slots["03-00"][emotion.Joy])
	})

	t.Run("slow slot times out alone", func(t *testing.T) {
		src := &fakeSource{
			slots:     map[string]map[string]any{"05-00": scores("sad", 0.5), "05-30": scores("hap", 1.0)},
			blockSlot: "05-30",
		}
		agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{SlotTimeout: 50 * time.Millisecond}, zaptest.NewLogger(t))

		start := time.Now()
		result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
		require.NoError(t, err)

		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Equal(t, grid.SlotsPerDay, src.slotCallCount())
		require.Len(t, result.Slots, 1)
		assert.Equal(t, 0.5, result.Slots["05-00"][emotion.Sadness])
		assert.NotContains(t, result.Slots, "05-30")
	})

	t.Run("rate limited", func(t *testing.T) {
		src := &fakeSource{slots: map[string]map[string]any{"23-30": scores("ang", 0.5)}}
		agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{RequestsPerSecond: 1000}, zaptest.NewLogger(t))

		result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
		require.NoError(t, err)
		assert.Equal(t, grid.SlotsPerDay, src.slotCallCount())
		assert.Contains(t, result.Slots, "23-30")
	})
}

func TestAggregateFailureIsolation(t *testing.T) {
	src := &fakeSource{day: rows(
		payload("08-00", map[string]any{"transcript": "hello"}),
		payload("08-30", map[string]any{"boom": true}),
		payload("09-00", scores("hap", 0.5)),
		payload("09-30", map[string]any{"emotion_scores": []any{0.1}}),
	)}
	scorer := panickyScorer{next: newSelector(t, adapter.ModelEmotion4)}
	agg := New(src, scorer, Options{}, zaptest.NewLogger(t))

	result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
	require.NoError(t, err)

	assert.Len(t, result.Slots, 4)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, 0.5, result.TotalScore)
	for _, slot := range []string{"08-00", "08-30", "09-30"} {
		assert.Equal(t, emotion.Basic4.Zero(), result.Slots[slot], slot)
	}
	assert.Equal(t, 0.5, result.Slots["09-00"][emotion.Joy])
}

func TestAggregateUndecodableRowCountsAsFailed(t *testing.T) {
	bad := payload("08-30", map[string]any{})
	bad.DecodeErr = errors.New("slot 08-30: decoding slot payload: unexpected end of JSON input")
	src := &fakeSource{day: rows(bad, payload("09-00", scores("hap", 0.5)))}
	agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{}, zaptest.NewLogger(t))

	result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
	require.NoError(t, err)

	assert.Zero(t, src.slotCallCount(), "one bad row must not force per-slot fetches")
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, emotion.Basic4.Zero(), result.Slots["08-30"])
}

func TestAggregateCrossVocabulary(t *testing.T) {
	src := &fakeSource{day: rows(
		payload("10-00", scores("ang", 0.5, "sad", 0.25, "hap", 0.25)),
	)}
	agg := New(src, newSelector(t, adapter.ModelEmotion8), Options{}, zaptest.NewLogger(t))

	result, err := agg.Aggregate(context.Background(), "device-1", "2025-06-26")
	require.NoError(t, err)

	vec := result.Slots["10-00"]
	assert.Equal(t, 10.0, vec[emotion.Anger])
	assert.Equal(t, 3.0, vec[emotion.Disgust])
	assert.Equal(t, 28.0, result.TotalScore)
}

func TestAggregateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{}
	agg := New(src, newSelector(t, adapter.ModelEmotion4), Options{}, zaptest.NewLogger(t))

	_, err := agg.Aggregate(ctx, "device-1", "2025-06-26")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, src.slotCallCount())
}
