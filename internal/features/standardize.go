package features

import (
	"fmt"
	"math"
)

// StandardScaler rescales each feature column to zero mean and unit
// variance. Distance-based models are sensitive to feature scale, so the
// trainer fits a scaler alongside the classifier and the api applies the
// same one at serving time. Fields are exported for gob.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fitted reports whether Fit has completed successfully.
func (s *StandardScaler) Fitted() bool { return len(s.Mean) > 0 }

// Fit learns per-column mean and standard deviation from X. Zero-variance
// columns get a standard deviation of 1 so Transform maps them to zero
// instead of dividing by zero.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return fmt.Errorf("features: cannot fit scaler on empty data")
	}
	rows, cols := len(X), len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			s.Mean[j] += X[i][j]
		}
		s.Mean[j] /= float64(rows)
		v := 0.0
		for i := 0; i < rows; i++ {
			d := X[i][j] - s.Mean[j]
			v += d * d
		}
		s.Std[j] = math.Sqrt(v / float64(rows))
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
	return nil
}

// Transform returns a standardized copy of X. Transform on an unfitted
// scaler returns X unchanged.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	if !s.Fitted() {
		return X
	}
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = s.TransformOne(X[i])
	}
	return out
}

// TransformOne standardizes a single vector.
func (s *StandardScaler) TransformOne(x []float64) []float64 {
	if !s.Fitted() {
		return x
	}
	out := make([]float64, len(x))
	for j := range x {
		if j < len(s.Mean) {
			out[j] = (x[j] - s.Mean[j]) / s.Std[j]
		} else {
			out[j] = x[j]
		}
	}
	return out
}

// FitTransform fits the scaler on X and returns the standardized copy.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X), nil
}
