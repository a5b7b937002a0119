package emotion

// Vector maps emotion labels to scores. Rule and cross-vocabulary scores are
// whole numbers; passthrough scores are raw probabilities.
type Vector map[string]float64

// Total sums every score in the vector.
func (v Vector) Total() float64 {
	var total float64
	for _, score := range v {
		total += score
	}
	return total
}

// Max returns the largest score, or 0 for an empty vector.
func (v Vector) Max() float64 {
	var max float64
	first := true
	for _, score := range v {
		if first || score > max {
			max = score
			first = false
		}
	}
	return max
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for label, score := range v {
		out[label] = score
	}
	return out
}
