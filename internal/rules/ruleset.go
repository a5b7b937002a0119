package rules

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"emotionagg/internal/emotion"
)

type Comparator int

const (
	GT Comparator = iota + 1
	LT
	EQ
)

func parseComparator(op string) (Comparator, bool) {
	switch strings.TrimSpace(op) {
	case ">":
		return GT, true
	case "<":
		return LT, true
	case "==":
		return EQ, true
	default:
		return 0, false
	}
}

func (c Comparator) String() string {
	switch c {
	case GT:
		return ">"
	case LT:
		return "<"
	case EQ:
		return "=="
	default:
		return "?"
	}
}

func (c Comparator) holds(value, threshold float64) bool {
	switch c {
	case GT:
		return value > threshold
	case LT:
		return value < threshold
	case EQ:
		return value == threshold
	default:
		return false
	}
}

// Rule is a threshold predicate over one feature. When HasSecondary is set
// the rule encodes a range check: both comparisons must hold against the same
// feature value.
type Rule struct {
	Feature            string
	Op                 Comparator
	Threshold          float64
	HasSecondary       bool
	SecondaryOp        Comparator
	SecondaryThreshold float64
}

func (r Rule) Fires(features map[string]float64) bool {
	value, ok := features[r.Feature]
	if !ok {
		return false
	}
	if !r.Op.holds(value, r.Threshold) {
		return false
	}
	if r.HasSecondary && !r.SecondaryOp.holds(value, r.SecondaryThreshold) {
		return false
	}
	return true
}

// RuleSet is read-only once loaded.
type RuleSet struct {
	rules            map[string][]Rule
	maxPointsPerRule int
}

// Empty returns a rule set that scores everything as zero.
func Empty() *RuleSet {
	return &RuleSet{rules: map[string][]Rule{}, maxPointsPerRule: 1}
}

func (rs *RuleSet) MaxPointsPerRule() int {
	return rs.maxPointsPerRule
}

// Rules returns a copy of the rules declared for label.
func (rs *RuleSet) Rules(label string) []Rule {
	return append([]Rule(nil), rs.rules[label]...)
}

// Len counts every accepted rule across all labels.
func (rs *RuleSet) Len() int {
	n := 0
	for _, list := range rs.rules {
		n += len(list)
	}
	return n
}

// Rule entries stay as nodes; decodeRule types each one separately.
type document struct {
	Emotions map[string][]yaml.Node `yaml:"emotions"`
	Meta     struct {
		MaxPointsPerRule *int `yaml:"max_points_per_rule"`
	} `yaml:"meta"`
}

type rawRule struct {
	Feature string   `yaml:"feature"`
	Op      string   `yaml:"op"`
	Th      *float64 `yaml:"th"`
	Op2     string   `yaml:"op2"`
	Th2     *float64 `yaml:"th2"`
}

// Load reads a rule document. Malformed rules are dropped and logged; only an
// unreadable or unparsable file is an error.
func Load(path string, logger *zap.Logger) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	return Parse(data, logger)
}

// LoadOrEmpty is Load with the degradation policy applied: any failure yields
// an empty rule set.
func LoadOrEmpty(path string, logger *zap.Logger) *RuleSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	rs, err := Load(path, logger)
	if err != nil {
		logger.Warn("rule set unavailable, scoring will be all zero",
			zap.String("path", path), zap.Error(err))
		return Empty()
	}
	return rs
}

func Parse(data []byte, logger *zap.Logger) (*RuleSet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rs := Empty()
	if doc.Meta.MaxPointsPerRule != nil {
		if *doc.Meta.MaxPointsPerRule < 1 {
			logger.Warn("ignoring non-positive max_points_per_rule", zap.Int("value", *doc.Meta.MaxPointsPerRule))
		} else {
			rs.maxPointsPerRule = *doc.Meta.MaxPointsPerRule
		}
	}

	for label, nodes := range doc.Emotions {
		if !emotion.Plutchik8.Has(label) {
			logger.Warn("ignoring rules for unknown emotion", zap.String("emotion", label))
			continue
		}
		accepted := make([]Rule, 0, len(nodes))
		for i := range nodes {
			rule, err := decodeRule(&nodes[i])
			if err != nil {
				logger.Warn("dropping malformed rule",
					zap.String("emotion", label), zap.Int("index", i), zap.Error(err))
				continue
			}
			accepted = append(accepted, rule)
		}
		rs.rules[label] = accepted
	}

	return rs, nil
}

func decodeRule(node *yaml.Node) (Rule, error) {
	var raw rawRule
	if err := node.Decode(&raw); err != nil {
		return Rule{}, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return raw.compile()
}

func (r rawRule) compile() (Rule, error) {
	feature := strings.TrimSpace(r.Feature)
	if feature == "" {
		return Rule{}, fmt.Errorf("feature is required")
	}
	op, ok := parseComparator(r.Op)
	if !ok {
		return Rule{}, fmt.Errorf("unsupported op %q", r.Op)
	}
	if r.Th == nil {
		return Rule{}, fmt.Errorf("th is required")
	}

	rule := Rule{
		Feature:   feature,
		Op:        op,
		Threshold: *r.Th,
	}

	switch {
	case r.Op2 != "" && r.Th2 != nil:
		op2, ok := parseComparator(r.Op2)
		if !ok {
			return Rule{}, fmt.Errorf("unsupported op2 %q", r.Op2)
		}
		rule.HasSecondary = true
		rule.SecondaryOp = op2
		rule.SecondaryThreshold = *r.Th2
	case r.Op2 != "" || r.Th2 != nil:
		return Rule{}, fmt.Errorf("op2 and th2 must be declared together")
	}

	return rule, nil
}
