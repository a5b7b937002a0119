// Package features turns openSMILE eGeMAPS output into flat feature maps.
package features

import (
	"encoding/json"
	"sort"
	"strings"
)

// Patterns are the eGeMAPS name fragments a leaf key must contain to be kept.
var Patterns = []string{
	"Loudness_sma3",
	"shimmerLocaldB_sma3nz",
	"HNRdBACF_sma3nz",
	"jitterLocal_sma3nz",
	"F0semitoneFrom27.5Hz_sma3nz",
	"spectralFlux_sma3",
	"mfcc",
	"alphaRatio_sma3",
	"HammarbergIndex_sma3",
	"logRelF0",
	"slope500-1500_sma3",
}

func matches(key string) bool {
	for _, pattern := range Patterns {
		if strings.Contains(key, pattern) {
			return true
		}
	}
	return false
}

// Extract walks a decoded JSON document and copies every numeric leaf whose key
// matches a known feature pattern. Keys are not prefixed with their path, so a
// name seen at several depths keeps the value visited last. Object keys are
// visited in sorted order. An empty map means no usable signal.
func Extract(payload any) map[string]float64 {
	out := make(map[string]float64)
	walk(payload, out)
	return out
}

func walk(node any, out map[string]float64) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			value := v[key]
			if num, ok := number(value); ok {
				if matches(key) {
					out[key] = num
				}
				continue
			}
			walk(value, out)
		}
	case []any:
		for _, item := range v {
			walk(item, out)
		}
	}
}

func number(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
