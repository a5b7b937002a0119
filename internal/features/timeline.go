package features

// AverageTimeline averages every feature across the per-second entries of a
// features_timeline. Entries without a "features" object and non-numeric
// values are skipped. It returns nil when nothing could be averaged.
func AverageTimeline(timeline []any) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)

	for _, entry := range timeline {
		second, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		values, ok := second["features"].(map[string]any)
		if !ok {
			continue
		}
		for name, raw := range values {
			num, ok := number(raw)
			if !ok {
				continue
			}
			sums[name] += num
			counts[name]++
		}
	}

	if len(sums) == 0 {
		return nil
	}
	out := make(map[string]float64, len(sums))
	for name, total := range sums {
		out[name] = total / float64(counts[name])
	}
	return out
}
