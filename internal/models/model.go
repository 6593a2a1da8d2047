package models

// Classifier is the contract every supervised classifier in this module
// satisfies. Labels must be comparable so they can be counted during
// majority voting.
type Classifier[L comparable] interface {
	Fit(X [][]float64, y []L) error
	Predict(X [][]float64) ([]L, error)
	PredictOne(x []float64) (L, error)
	Name() string
}
