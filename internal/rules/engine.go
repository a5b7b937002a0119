// Package rules scores acoustic feature maps against YAML-declared threshold
// rules.
package rules

import "emotionagg/internal/emotion"

type Engine struct {
	set *RuleSet
}

func NewEngine(set *RuleSet) *Engine {
	if set == nil {
		set = Empty()
	}
	return &Engine{set: set}
}

// Evaluate returns point totals over the 8-label vocabulary. Every fired rule
// adds max_points_per_rule; totals are not capped.
func (e *Engine) Evaluate(features map[string]float64) emotion.Vector {
	scores := emotion.Plutchik8.Zero()
	points := float64(e.set.maxPointsPerRule)
	for _, label := range emotion.Plutchik8.Labels {
		for _, rule := range e.set.rules[label] {
			if rule.Fires(features) {
				scores[label] += points
			}
		}
	}
	return scores
}
