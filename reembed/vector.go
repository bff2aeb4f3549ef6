package reembed

import "math"

// NormalizeVector scales a vector to unit length and returns a new slice.
// A zero vector cannot be normalized and yields a zero vector of the same
// dimension.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	result := make([]float32, len(v))
	if sum == 0 {
		return result
	}

	magnitude := float32(math.Sqrt(sum))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
