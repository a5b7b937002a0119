package adapter

import (
	"fmt"

	"emotionagg/internal/emotion"
	"emotionagg/internal/features"
	"emotionagg/internal/rules"
)

type RawFeatures struct {
	engine *rules.Engine
}

func NewRawFeatures(engine *rules.Engine) *RawFeatures {
	if engine == nil {
		engine = rules.NewEngine(nil)
	}
	return &RawFeatures{engine: engine}
}

func (a *RawFeatures) Kind() Kind                     { return KindRawFeatures }
func (a *RawFeatures) Vocabulary() emotion.Vocabulary { return emotion.Plutchik8 }

// Adapt averages a per-second features_timeline when present, extracts the
// known eGeMAPS features and scores them. No features means a zero vector.
func (a *RawFeatures) Adapt(payload map[string]any) (emotion.Vector, error) {
	doc := any(payload)
	if raw, ok := payload[keyFeaturesTimeline]; ok {
		timeline, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s is %T, want a list", keyFeaturesTimeline, raw)
		}
		averaged := features.AverageTimeline(timeline)
		if averaged == nil {
			return emotion.Plutchik8.Zero(), nil
		}
		doc = map[string]any{keyFeatures: toAny(averaged)}
	}

	extracted := features.Extract(doc)
	if len(extracted) == 0 {
		return emotion.Plutchik8.Zero(), nil
	}
	return a.engine.Evaluate(extracted), nil
}

func toAny(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
