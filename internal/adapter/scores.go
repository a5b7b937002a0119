package adapter

import (
	"fmt"
	"strings"
)

// Short codes emitted by the 4-class classifiers.
const (
	codeAnger   = "ang"
	codeSadness = "sad"
	codeNeutral = "neu"
	codeHappy   = "hap"
)

var codeAliases = map[string]string{
	"ang":     codeAnger,
	"anger":   codeAnger,
	"angry":   codeAnger,
	"sad":     codeSadness,
	"sadness": codeSadness,
	"neu":     codeNeutral,
	"neutral": codeNeutral,
	"hap":     codeHappy,
	"happy":   codeHappy,
	"joy":     codeHappy,
}

// classifierScores reads the 4-class probabilities of a payload, keyed by
// short code. emotion_scores wins over emotion_extractor_result. A payload
// carrying neither yields a nil map.
func classifierScores(payload map[string]any) (map[string]float64, error) {
	if raw, ok := payload[keyEmotionScores]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is %T, want an object", keyEmotionScores, raw)
		}
		out := make(map[string]float64, len(m))
		for key, value := range m {
			code, ok := codeAliases[strings.ToLower(key)]
			if !ok {
				continue
			}
			if num, ok := toFloat(value); ok {
				out[code] = num
			}
		}
		return out, nil
	}

	if raw, ok := payload[keyExtractorResult]; ok && raw != nil {
		return averageChunks(raw)
	}
	return nil, nil
}

// averageChunks reduces a per-chunk classification list,
// [{"emotions": [{"label": "hap", "score": 0.7}, ...]}, ...], to one score per
// code by averaging over the chunks that reported it.
func averageChunks(raw any) (map[string]float64, error) {
	chunks, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, want a list", keyExtractorResult, raw)
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, item := range chunks {
		chunk, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entries, ok := chunk["emotions"].([]any)
		if !ok {
			continue
		}
		for _, entry := range entries {
			pair, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			label, _ := pair["label"].(string)
			code, ok := codeAliases[strings.ToLower(label)]
			if !ok {
				continue
			}
			score, ok := toFloat(pair["score"])
			if !ok {
				continue
			}
			sums[code] += score
			counts[code]++
		}
	}

	out := make(map[string]float64, len(sums))
	for code, total := range sums {
		out[code] = total / float64(counts[code])
	}
	return out, nil
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
