package ranker

import "math"

// cosine returns the cosine similarity of a and b. ok is false when the vectors cannot be
// compared: different dimensions, empty, or zero norm.
func cosine(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// rescale maps cosine similarity from [-1, 1] onto [0, 1].
func rescale(cos float64) float64 {
	return min(max((cos+1)/2, 0), 1)
}
