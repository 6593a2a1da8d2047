package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	require.NoError(t, GenerateSyntheticPoints(500, 4, 1.0, path))

	X, y, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, X, 500)
	require.Len(t, y, 500)

	for _, vec := range X {
		assert.Len(t, vec, 4)
	}
	seen := map[string]int{}
	for _, label := range y {
		seen[label]++
	}
	for _, c := range []string{"low", "medium", "high"} {
		assert.Greater(t, seen[c], 0, "class %s missing from sample", c)
	}
}

func TestGenerateRejectsBadArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "points.csv")
	assert.Error(t, GenerateSyntheticPoints(0, 4, 1.0, path))
	assert.Error(t, GenerateSyntheticPoints(10, 0, 1.0, path))
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}
