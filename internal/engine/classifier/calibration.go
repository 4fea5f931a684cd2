package classifier

import "math"

// Platt maps an uncalibrated decision value to a posterior with
// p = 1 / (1 + exp(A*d + B)).
type Platt struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Probability returns the calibrated posterior for the positive class.
func (p Platt) Probability(decision float64) float64 {
	return sigmoid(-(p.A*decision + p.B))
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// softmax returns exp-normalized scores, shifted by the max for stability.
func softmax(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	hi := xs[0]
	for _, x := range xs[1:] {
		if x > hi {
			hi = x
		}
	}
	var sum float64
	for i, x := range xs {
		out[i] = math.Exp(x - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// argmax returns the index of the first maximal element.
func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
