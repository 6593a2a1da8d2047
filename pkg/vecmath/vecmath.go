// Package vecmath provides small numeric helpers over real-valued feature
// vectors. All functions use zip semantics: when the inputs differ in
// length, only the overlapping prefix is considered.
package vecmath

import "math"

// Dot returns the dot product of v1 and v2.
func Dot(v1, v2 []float64) float64 {
	n := min(len(v1), len(v2))
	acc := 0.0
	for i := 0; i < n; i++ {
		acc += v1[i] * v2[i]
	}
	return acc
}

// SquaredDistance returns the squared Euclidean distance between v1 and v2.
// Ordering by squared distance is the same as ordering by distance, so
// callers that only compare distances can skip the square root.
func SquaredDistance(v1, v2 []float64) float64 {
	n := min(len(v1), len(v2))
	acc := 0.0
	for i := 0; i < n; i++ {
		d := v1[i] - v2[i]
		acc += d * d
	}
	return acc
}

// Distance returns the Euclidean distance between v1 and v2.
func Distance(v1, v2 []float64) float64 {
	return math.Sqrt(SquaredDistance(v1, v2))
}
