package data

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

var classes = []string{"low", "medium", "high"}

// GenerateSyntheticPoints writes n labelled points of the given dimension
// to a CSV file at outPath, header first. Each class is a Gaussian cluster
// around its own centre; spread controls the noise and thus how much the
// clusters overlap. A small fraction of points is mislabelled so accuracy
// on the dataset does not saturate at 1.
func GenerateSyntheticPoints(n, dim int, spread float64, outPath string) error {
	if n <= 0 || dim <= 0 {
		return fmt.Errorf("data: need positive n and dim, got n=%d dim=%d", n, dim)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := make([]string, 0, dim+1)
	for j := 0; j < dim; j++ {
		header = append(header, "f"+strconv.Itoa(j))
	}
	header = append(header, "label")
	if err := w.Write(header); err != nil {
		return err
	}

	centres := make([][]float64, len(classes))
	for c := range classes {
		centres[c] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			// centres spaced along alternating axes so no single
			// feature separates all classes
			centres[c][j] = float64(c) * 4.0 * float64((c+j)%2)
		}
	}

	rec := make([]string, dim+1)
	for i := 0; i < n; i++ {
		c := rand.Intn(len(classes))
		for j := 0; j < dim; j++ {
			v := centres[c][j] + rand.NormFloat64()*spread
			rec[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		label := classes[c]
		if rand.Float64() < 0.02 {
			label = classes[rand.Intn(len(classes))]
		}
		rec[dim] = label
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// LoadCSV reads a dataset written by GenerateSyntheticPoints: every column
// but the last is a feature, the last is the label, and the first row is a
// header.
func LoadCSV(path string) (Dataset, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("data: %s has no data rows", path)
	}

	X := make(Dataset, 0, len(rows)-1)
	y := make([]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("data: row %d has %d columns", i, len(row))
		}
		vec := make(Example, len(row)-1)
		for j := 0; j < len(row)-1; j++ {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("data: row %d column %d: %w", i, j, err)
			}
			vec[j] = v
		}
		X = append(X, vec)
		y = append(y, row[len(row)-1])
	}
	return X, y, nil
}
