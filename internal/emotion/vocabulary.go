// Package emotion defines the label vocabularies and score vectors shared by
// every scoring path.
package emotion

import (
	"fmt"
	"strings"
)

// Vocabulary is an ordered, fixed set of emotion labels. The order is the
// order labels are rendered in a day grid.
type Vocabulary struct {
	Name   string
	Labels []string
}

const (
	Neutral      = "neutral"
	Joy          = "joy"
	Anger        = "anger"
	Sadness      = "sadness"
	Fear         = "fear"
	Anticipation = "anticipation"
	Surprise     = "surprise"
	Trust        = "trust"
	Disgust      = "disgust"
)

var (
	// Basic4 is the vocabulary of the 4-class classifiers.
	Basic4 = Vocabulary{
		Name:   "basic4",
		Labels: []string{Neutral, Joy, Anger, Sadness},
	}

	// Plutchik8 is the vocabulary produced by rule scoring and the
	// cross-vocabulary mapping.
	Plutchik8 = Vocabulary{
		Name:   "plutchik8",
		Labels: []string{Anger, Fear, Anticipation, Surprise, Joy, Sadness, Trust, Disgust},
	}
)

// VocabularyByName resolves a vocabulary from its configured name.
func VocabularyByName(name string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Basic4.Name:
		return Basic4, nil
	case Plutchik8.Name:
		return Plutchik8, nil
	default:
		return Vocabulary{}, fmt.Errorf("unknown vocabulary: %q", name)
	}
}

// Has reports whether label belongs to the vocabulary.
func (v Vocabulary) Has(label string) bool {
	for _, l := range v.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Zero returns a vector holding every label of the vocabulary at 0.
func (v Vocabulary) Zero() Vector {
	out := make(Vector, len(v.Labels))
	for _, label := range v.Labels {
		out[label] = 0
	}
	return out
}

// Project returns a copy of vec restricted to the vocabulary: missing labels
// are zero and labels outside the vocabulary are dropped.
func (v Vocabulary) Project(vec Vector) Vector {
	out := v.Zero()
	for _, label := range v.Labels {
		if score, ok := vec[label]; ok {
			out[label] = score
		}
	}
	return out
}
