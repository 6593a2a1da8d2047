package models

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"lazylearn/internal/features"
)

// Bundle is what the trainer persists and the api serves: the fitted
// classifier plus the scaler its training features went through. Scaler is
// nil when the model was trained on raw features.
type Bundle struct {
	Model  *KNN[string]
	Scaler *features.StandardScaler
}

// SaveBundle gob-encodes b to path, creating parent directories as needed.
func SaveBundle(path string, b *Bundle) error {
	if b == nil || b.Model == nil {
		return fmt.Errorf("models: refusing to save an empty bundle")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(b)
}

// LoadBundle reads a bundle previously written by SaveBundle.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("models: decode %s: %w", path, err)
	}
	if b.Model == nil {
		return nil, fmt.Errorf("models: %s holds no model", path)
	}
	return &b, nil
}
