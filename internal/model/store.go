package model

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Save writes m as a YAML document.
func Save(w io.Writer, m *ThresholdModel) error {
	if m.Version == 0 {
		m.Version = Version
	}
	if err := m.validate(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("error encoding model: %w", err)
	}
	return enc.Close()
}

// Load reads one model and rejects unknown schema versions.
func Load(r io.Reader) (*ThresholdModel, error) {
	var m ThresholdModel
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("error decoding model: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveFile writes m to path, creating the directory if needed.
func SaveFile(path string, m *ThresholdModel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating model directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating model file: %w", err)
	}
	if err := Save(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads the model stored at path. A model without a name takes
// the file's base name.
func LoadFile(path string) (*ThresholdModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening model file: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// LoadDir reads every .yaml or .yml model in dir in name order. Files that
// fail to load are logged to logger, when set, and skipped.
func LoadDir(dir string, logger *log.Logger) ([]*ThresholdModel, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading model directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var models []*ThresholdModel
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		m, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			if logger != nil {
				logger.Printf("model: skipping %v", err)
			}
			continue
		}
		models = append(models, m)
	}
	return models, nil
}
