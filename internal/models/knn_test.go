package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	trainX = [][]float64{
		{0, 1, 2, 2, 3},
		{5, 4, 3, 4, 5},
		{0, 0, 0, 0, 0},
	}
	trainY = []string{"good", "bad", "good"}
)

func TestPredictBeforeFit(t *testing.T) {
	m := NewKNN[string](3)
	assert.False(t, m.Fitted())

	_, err := m.PredictOne([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.Predict([][]float64{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFitStoresCopies(t *testing.T) {
	m := NewKNN[string](3)
	X := [][]float64{{1, 2}, {3, 4}}
	y := []string{"a", "b"}
	require.NoError(t, m.Fit(X, y))

	gotX, gotY, ok := m.TrainingData()
	require.True(t, ok)
	assert.Equal(t, X, gotX)
	assert.Equal(t, y, gotY)

	// mutating the caller's slices must not leak into the model
	X[0][0] = 99
	y[0] = "mutated"
	gotX, gotY, _ = m.TrainingData()
	assert.Equal(t, 1.0, gotX[0][0])
	assert.Equal(t, "a", gotY[0])
}

func TestFitLengthMismatch(t *testing.T) {
	m := NewKNN[string](1)
	err := m.Fit([][]float64{{1}, {2}}, []string{"only-one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 examples but 1 labels")
	assert.False(t, m.Fitted())
}

func TestRefitReplacesState(t *testing.T) {
	m := NewKNN[string](1)
	require.NoError(t, m.Fit([][]float64{{0}}, []string{"old"}))
	require.NoError(t, m.Fit([][]float64{{0}}, []string{"new"}))

	label, err := m.PredictOne([]float64{0})
	require.NoError(t, err)
	assert.Equal(t, "new", label)
}

func TestPredictOneNearest(t *testing.T) {
	m := NewKNN[string](1)
	require.NoError(t, m.Fit(trainX, trainY))

	// squared distances from the query: 6, 48 and 5 — the all-zeros
	// "good" point wins
	label, err := m.PredictOne([]float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, "good", label)
}

func TestPredictMajority(t *testing.T) {
	m := NewKNN[string](3)
	require.NoError(t, m.Fit(trainX, trainY))

	label, err := m.PredictOne([]float64{5, 4, 3, 4, 5})
	require.NoError(t, err)
	// even on top of the "bad" point, two of the three voters are "good"
	assert.Equal(t, "good", label)
}

func TestKLargerThanTrainingSet(t *testing.T) {
	m := NewKNN[string](3)
	require.NoError(t, m.Fit(trainX[:2], trainY[:2]))

	// both points vote; the 1-1 tie resolves to the lower-index neighbour
	label, err := m.PredictOne([]float64{9, 9, 9, 9, 9})
	require.NoError(t, err)
	assert.Equal(t, "good", label)
}

func TestKZero(t *testing.T) {
	m := NewKNN[string](0)
	require.NoError(t, m.Fit(trainX, trainY))

	_, err := m.PredictOne([]float64{1, 1, 1, 1, 1})
	assert.ErrorIs(t, err, ErrNoNeighbors)

	_, err = m.Predict([][]float64{{1, 1, 1, 1, 1}, {0, 0, 0, 0, 0}})
	assert.ErrorIs(t, err, ErrNoNeighbors)
}

func TestEmptyTrainingSet(t *testing.T) {
	m := NewKNN[string](5)
	require.NoError(t, m.Fit(nil, nil))

	_, err := m.PredictOne([]float64{1})
	assert.ErrorIs(t, err, ErrNoNeighbors)
}

func TestPredictBatchOrder(t *testing.T) {
	m := NewKNN[string](1)
	require.NoError(t, m.Fit(trainX, trainY))

	queries := [][]float64{
		{5, 4, 3, 4, 5},
		{0, 0, 0, 0, 0},
		{0, 1, 2, 2, 3},
		{5, 5, 5, 5, 5},
	}
	labels, err := m.Predict(queries)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "good", "good", "bad"}, labels)
}

func TestPredictLargeBatch(t *testing.T) {
	m := NewKNN[int](1)
	X := make([][]float64, 0, 200)
	y := make([]int, 0, 200)
	for i := 0; i < 200; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, i%7)
	}
	require.NoError(t, m.Fit(X, y))

	labels, err := m.Predict(X)
	require.NoError(t, err)
	require.Len(t, labels, 200)
	assert.Equal(t, y, labels)
}

func TestIntLabels(t *testing.T) {
	m := NewKNN[int](3)
	require.NoError(t, m.Fit([][]float64{{0}, {1}, {10}}, []int{1, 1, 2}))

	label, err := m.PredictOne([]float64{0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestGobRoundTrip(t *testing.T) {
	m := NewKNN[string](1)
	require.NoError(t, m.Fit(trainX, trainY))

	path := filepath.Join(t.TempDir(), "knn.gob")
	require.NoError(t, SaveBundle(path, &Bundle{Model: m}))

	b, err := LoadBundle(path)
	require.NoError(t, err)
	require.True(t, b.Model.Fitted())
	assert.Equal(t, 1, b.Model.K)

	label, err := b.Model.PredictOne([]float64{1, 1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, "good", label)
}

func TestLoadBundleMissing(t *testing.T) {
	_, err := LoadBundle(filepath.Join(t.TempDir(), "nope.gob"))
	assert.Error(t, err)
}
