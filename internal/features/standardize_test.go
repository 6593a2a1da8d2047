package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTransform(t *testing.T) {
	X := [][]float64{
		{0, 10},
		{2, 10},
		{4, 10},
	}
	s := NewStandardScaler()
	out, err := s.FitTransform(X)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, s.Mean[0], 1e-12)
	// second column has zero variance and maps to all zeros
	for i := range out {
		assert.InDelta(t, 0.0, out[i][1], 1e-12)
	}

	// standardized column has zero mean and unit variance
	mean, variance := 0.0, 0.0
	for i := range out {
		mean += out[i][0]
	}
	mean /= float64(len(out))
	for i := range out {
		d := out[i][0] - mean
		variance += d * d
	}
	variance /= float64(len(out))
	assert.InDelta(t, 0.0, mean, 1e-12)
	assert.InDelta(t, 1.0, variance, 1e-12)

	// input must not be mutated
	assert.Equal(t, [][]float64{{0, 10}, {2, 10}, {4, 10}}, X)
}

func TestFitEmpty(t *testing.T) {
	err := NewStandardScaler().Fit(nil)
	assert.Error(t, err)
}

func TestTransformUnfittedIsIdentity(t *testing.T) {
	s := NewStandardScaler()
	X := [][]float64{{1, 2}}
	assert.Equal(t, X, s.Transform(X))
	assert.False(t, s.Fitted())
}

func TestTransformOneMatchesTransform(t *testing.T) {
	X := [][]float64{{1, 100}, {3, 300}, {5, 200}}
	s := NewStandardScaler()
	require.NoError(t, s.Fit(X))
	batch := s.Transform(X)
	for i := range X {
		assert.Equal(t, batch[i], s.TransformOne(X[i]))
	}
}
