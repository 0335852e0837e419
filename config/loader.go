package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader retrieves and parses a File from some underlying source.
type Loader interface {
	Load(ctx context.Context) (*File, error)
}

// FileLoader loads a File from a path on disk.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and parses the YAML file at the loader's path. The
// context is accepted for interface parity with other Loader
// implementations; a local file read has nothing to cancel on.
func (l *FileLoader) Load(ctx context.Context) (*File, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("ackq/config: read %s: %w", l.path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ackq/config: parse %s: %w", l.path, err)
	}
	return &f, nil
}

// Load is a convenience wrapper for the common case of a single file
// path with no custom Loader.
func Load(ctx context.Context, path string) (*File, error) {
	return NewFileLoader(path).Load(ctx)
}
