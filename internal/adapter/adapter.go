// Package adapter converts a slot payload into a canonical emotion vector.
// Which conversion applies is decided once per payload by Classify.
package adapter

import (
	"errors"
	"fmt"
	"strings"

	"emotionagg/internal/emotion"
	"emotionagg/internal/rules"
)

var ErrUnknownPayload = errors.New("unrecognised slot payload")

type Kind int

const (
	KindRawFeatures Kind = iota + 1
	KindPassthrough
	KindCrossVocabulary
)

func (k Kind) String() string {
	switch k {
	case KindRawFeatures:
		return "raw_features"
	case KindPassthrough:
		return "passthrough"
	case KindCrossVocabulary:
		return "cross_vocabulary"
	default:
		return "unknown"
	}
}

// Adapter is implemented by RawFeatures, Passthrough and CrossVocabulary.
type Adapter interface {
	Kind() Kind
	Vocabulary() emotion.Vocabulary
	Adapt(payload map[string]any) (emotion.Vector, error)
}

// Shape is the payload schema inferred from its top-level keys.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeRawFeatures
	ShapeClassifier
)

const (
	keyFeaturesTimeline = "features_timeline"
	keyFeatures         = "features"
	keyEmotionScores    = "emotion_scores"
	keyExtractorResult  = "emotion_extractor_result"
)

func Classify(payload map[string]any) Shape {
	if payload == nil {
		return ShapeUnknown
	}
	if _, ok := payload[keyFeaturesTimeline]; ok {
		return ShapeRawFeatures
	}
	if _, ok := payload[keyFeatures]; ok {
		return ShapeRawFeatures
	}
	if _, ok := payload[keyEmotionScores]; ok {
		return ShapeClassifier
	}
	if _, ok := payload[keyExtractorResult]; ok {
		return ShapeClassifier
	}
	return ShapeUnknown
}

// Model names accepted in configuration.
const (
	ModelOpenSMILE = "opensmile"
	ModelEmotion4  = "emotion4"
	ModelEmotion8  = "emotion8"
)

// Selector picks the adapter for a payload. Raw feature payloads always go
// through rule scoring; classifier payloads go through the variant matching
// the configured model.
type Selector struct {
	model      string
	vocab      emotion.Vocabulary
	raw        Adapter
	classifier Adapter
}

func NewSelector(model string, engine *rules.Engine) (*Selector, error) {
	s := &Selector{
		model: strings.ToLower(strings.TrimSpace(model)),
		raw:   NewRawFeatures(engine),
	}
	switch s.model {
	case ModelOpenSMILE, ModelEmotion8:
		s.vocab = emotion.Plutchik8
		s.classifier = NewCrossVocabulary()
	case ModelEmotion4:
		s.vocab = emotion.Basic4
		s.classifier = NewPassthrough()
	default:
		return nil, fmt.Errorf("unknown model: %q", model)
	}
	return s, nil
}

func (s *Selector) Model() string {
	return s.model
}

// Vocabulary is the label set every day grid produced under this model uses.
func (s *Selector) Vocabulary() emotion.Vocabulary {
	return s.vocab
}

func (s *Selector) Select(payload map[string]any) (Adapter, error) {
	switch Classify(payload) {
	case ShapeRawFeatures:
		return s.raw, nil
	case ShapeClassifier:
		return s.classifier, nil
	default:
		return nil, ErrUnknownPayload
	}
}

// Adapt classifies the payload and runs the matching adapter.
func (s *Selector) Adapt(payload map[string]any) (emotion.Vector, Kind, error) {
	a, err := s.Select(payload)
	if err != nil {
		return nil, 0, err
	}
	vec, err := a.Adapt(payload)
	if err != nil {
		return nil, a.Kind(), fmt.Errorf("%s adapter: %w", a.Kind(), err)
	}
	return vec, a.Kind(), nil
}
