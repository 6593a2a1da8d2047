package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config gathers the settings shared by the binaries. Every field has a
// default, so a config file is optional and flags/env only override what
// they name.
type Config struct {
	Server struct {
		Port   string `yaml:"port"`
		APIKey string `yaml:"api_key"`
	} `yaml:"server"`
	Model struct {
		Path        string `yaml:"path"`
		K           int    `yaml:"k"`
		Standardize bool   `yaml:"standardize"`
	} `yaml:"model"`
	Data struct {
		Path string `yaml:"path"`
	} `yaml:"data"`
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Model.Path = "models/knn_model.gob"
	cfg.Model.K = 5
	cfg.Model.Standardize = true
	cfg.Data.Path = "data/synthetic.csv"
	cfg.Store.Path = "data/predictions.db"
	return cfg
}

// Load reads the YAML file at path when path is non-empty, then applies
// the PORT, API_KEY and MODEL_PATH environment overrides the api binary
// has always honoured.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	return cfg, nil
}
