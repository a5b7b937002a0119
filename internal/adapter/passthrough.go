package adapter

import "emotionagg/internal/emotion"

var passthroughLabels = map[string]string{
	codeAnger:   emotion.Anger,
	codeSadness: emotion.Sadness,
	codeNeutral: emotion.Neutral,
	codeHappy:   emotion.Joy,
}

// Passthrough renames 4-class probabilities to the 4-label vocabulary without
// scaling them.
type Passthrough struct{}

func NewPassthrough() *Passthrough { return &Passthrough{} }

func (a *Passthrough) Kind() Kind                     { return KindPassthrough }
func (a *Passthrough) Vocabulary() emotion.Vocabulary { return emotion.Basic4 }

func (a *Passthrough) Adapt(payload map[string]any) (emotion.Vector, error) {
	scores, err := classifierScores(payload)
	if err != nil {
		return nil, err
	}
	out := emotion.Basic4.Zero()
	for code, p := range scores {
		out[passthroughLabels[code]] = p
	}
	return out, nil
}
