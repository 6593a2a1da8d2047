package models

import (
	"bytes"
	"container/heap"
	"encoding/gob"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"lazylearn/pkg/counter"
	"lazylearn/pkg/vecmath"
)

var (
	// ErrNotFitted is returned when Predict or PredictOne runs before Fit.
	ErrNotFitted = errors.New("knn: classifier has not been fitted")

	// ErrNoNeighbors is returned when the candidate set ends up empty
	// (k == 0 or an empty training set), so no majority vote is possible.
	ErrNoNeighbors = errors.New("knn: no neighbours to vote")
)

// training bundles the stored examples with their labels so one can never
// be present without the other.
type training[L comparable] struct {
	X [][]float64
	Y []L
}

// KNN is a k-nearest-neighbours classifier. It is a lazy learner: Fit only
// stores the training data and all work happens at prediction time.
type KNN[L comparable] struct {
	K int

	trained *training[L]
}

var _ Classifier[string] = (*KNN[string])(nil)

// NewKNN constructs an untrained classifier voting among k neighbours.
// k is not validated here: k == 0 makes every prediction fail with
// ErrNoNeighbors, and k larger than the training set degrades to voting
// among all stored points.
func NewKNN[L comparable](k int) *KNN[L] {
	return &KNN[L]{K: k}
}

func (m *KNN[L]) Name() string { return "KNN" }

// Fit stores copies of X and y, replacing any prior training state.
// The lengths must match; labels pair with examples by index.
func (m *KNN[L]) Fit(X [][]float64, y []L) error {
	if len(X) != len(y) {
		return fmt.Errorf("knn: %d examples but %d labels", len(X), len(y))
	}
	t := &training[L]{
		X: make([][]float64, len(X)),
		Y: make([]L, len(y)),
	}
	for i := range X {
		t.X[i] = append([]float64(nil), X[i]...)
	}
	copy(t.Y, y)
	m.trained = t
	return nil
}

// Fitted reports whether Fit has completed successfully.
func (m *KNN[L]) Fitted() bool { return m.trained != nil }

// TrainingData exposes the stored examples and labels; the boolean is
// false while untrained. The returned slices are the internal copies and
// must not be mutated.
func (m *KNN[L]) TrainingData() ([][]float64, []L, bool) {
	if m.trained == nil {
		return nil, nil, false
	}
	return m.trained.X, m.trained.Y, true
}

// Predict returns one label per query, in query order. Queries are
// independent and the training state is read-only after Fit, so they are
// scored in parallel.
func (m *KNN[L]) Predict(X [][]float64) ([]L, error) {
	if m.trained == nil {
		return nil, ErrNotFitted
	}
	out := make([]L, len(X))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(X) {
		workers = len(X)
	}
	if workers <= 1 {
		for i := range X {
			label, err := m.PredictOne(X[i])
			if err != nil {
				return nil, err
			}
			out[i] = label
		}
		return out, nil
	}

	per := (len(X) + workers - 1) / workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * per
		end := min(start+per, len(X))
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				label, err := m.PredictOne(X[i])
				if err != nil {
					errs[w] = err
					return
				}
				out[i] = label
			}
		}(w, start, end)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PredictOne returns the majority label among the k stored training points
// closest to x by squared Euclidean distance.
//
// Selection keeps a bounded max-heap of candidates: a later training point
// evicts the current worst only when strictly closer, so boundary ties
// keep the earlier point. Votes are cast in ascending training-index
// order, which makes a voting tie resolve to the lowest-index neighbour's
// label.
func (m *KNN[L]) PredictOne(x []float64) (L, error) {
	var zero L
	if m.trained == nil {
		return zero, ErrNotFitted
	}

	nbrs := make(candidateHeap, 0, max(m.K, 0))
	for i, xt := range m.trained.X {
		d := vecmath.SquaredDistance(x, xt)
		switch {
		case len(nbrs) < m.K:
			heap.Push(&nbrs, candidate{idx: i, dist: d})
		case d < nbrs[0].dist:
			nbrs[0] = candidate{idx: i, dist: d}
			heap.Fix(&nbrs, 0)
		}
	}
	if len(nbrs) == 0 {
		return zero, ErrNoNeighbors
	}

	sort.Slice(nbrs, func(i, j int) bool { return nbrs[i].idx < nbrs[j].idx })
	votes := counter.FromSeq[L](func(yield func(L) bool) {
		for _, nb := range nbrs {
			if !yield(m.trained.Y[nb.idx]) {
				return
			}
		}
	})
	label, _, ok := votes.MostFrequent()
	if !ok {
		panic("knn: empty vote with a non-empty candidate set")
	}
	return label, nil
}

// candidate is one (training index, squared distance) pair under
// consideration as a nearest neighbour.
type candidate struct {
	idx  int
	dist float64
}

// candidateHeap is a max-heap keyed on distance: the worst candidate so
// far sits at the root, ready to be evicted.
type candidateHeap []candidate

func (h candidateHeap) Len() int           { return len(h) }
func (h candidateHeap) Less(i, j int) bool { return h[i].dist > h[j].dist }
func (h candidateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// knnState is the exported mirror of KNN used for gob round trips.
type knnState[L comparable] struct {
	K      int
	Fitted bool
	X      [][]float64
	Y      []L
}

// GobEncode implements gob.GobEncoder so trained models can be persisted
// despite the unexported training state.
func (m *KNN[L]) GobEncode() ([]byte, error) {
	s := knnState[L]{K: m.K}
	if m.trained != nil {
		s.Fitted = true
		s.X = m.trained.X
		s.Y = m.trained.Y
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (m *KNN[L]) GobDecode(b []byte) error {
	var s knnState[L]
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&s); err != nil {
		return err
	}
	m.K = s.K
	m.trained = nil
	if s.Fitted {
		m.trained = &training[L]{X: s.X, Y: s.Y}
	}
	return nil
}
