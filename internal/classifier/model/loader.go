package model

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Load decodes an artifact from r and builds a classifier from it.
func Load(r io.Reader) (*Classifier, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return New(&a)
}

// LoadFile reads the artifact at path.
func LoadFile(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}
