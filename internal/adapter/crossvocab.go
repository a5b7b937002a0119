package adapter

import (
	"math"

	"emotionagg/internal/emotion"
)

// ceiling is the peak score a cross-vocabulary vector is rescaled to.
const ceiling = 10

type share struct {
	target string
	weight float64
}

type redistribution struct {
	source  string
	targets []share
}

// CrossVocabulary spreads 4-class probabilities over the 8-label vocabulary
// and bounds the result to 0..10.
type CrossVocabulary struct {
	table []redistribution
}

func NewCrossVocabulary() *CrossVocabulary {
	return &CrossVocabulary{table: []redistribution{
		{source: codeAnger, targets: []share{
			{emotion.Anger, 1.0}, {emotion.Disgust, 0.3}, {emotion.Fear, 0.1},
		}},
		{source: codeSadness, targets: []share{
			{emotion.Sadness, 1.0}, {emotion.Fear, 0.2}, {emotion.Trust, -0.3},
		}},
		{source: codeNeutral, targets: []share{
			{emotion.Trust, 0.2}, {emotion.Anticipation, 0.1},
		}},
		{source: codeHappy, targets: []share{
			{emotion.Joy, 1.0}, {emotion.Trust, 0.4}, {emotion.Anticipation, 0.3}, {emotion.Surprise, 0.1},
		}},
	}}
}

func (a *CrossVocabulary) Kind() Kind                     { return KindCrossVocabulary }
func (a *CrossVocabulary) Vocabulary() emotion.Vocabulary { return emotion.Plutchik8 }

func (a *CrossVocabulary) Adapt(payload map[string]any) (emotion.Vector, error) {
	scores, err := classifierScores(payload)
	if err != nil {
		return nil, err
	}
	return a.Map(scores), nil
}

// Map applies the redistribution table in order. Each probability becomes an
// integer base of floor(p*100); positive shares add floor(base*w), negative
// shares subtract floor(base*|w|) without taking the running total below 0.
// When the peak exceeds 10 every score is rescaled by 10/peak and floored.
func (a *CrossVocabulary) Map(probabilities map[string]float64) emotion.Vector {
	totals := make(map[string]int, len(emotion.Plutchik8.Labels))
	for _, label := range emotion.Plutchik8.Labels {
		totals[label] = 0
	}

	for _, row := range a.table {
		p, ok := probabilities[row.source]
		if !ok {
			continue
		}
		base := int(math.Floor(p * 100))
		if base <= 0 {
			continue
		}
		for _, s := range row.targets {
			switch {
			case s.weight > 0:
				totals[s.target] += int(math.Floor(float64(base) * s.weight))
			case s.weight < 0:
				delta := int(math.Floor(float64(base) * -s.weight))
				totals[s.target] = max(totals[s.target]-delta, 0)
			}
		}
	}

	peak := 0
	for _, v := range totals {
		peak = max(peak, v)
	}
	if peak > ceiling {
		for label, v := range totals {
			totals[label] = v * ceiling / peak
		}
	}

	out := make(emotion.Vector, len(totals))
	for label, v := range totals {
		out[label] = float64(v)
	}
	return out
}
