// Package versionfile persists the current-versions document as YAML on disk.
package versionfile

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/tcpanel/internal/domain/model"
	"github.com/ericfisherdev/tcpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.VersionStore = (*Store)(nil)

// Store reads and writes a single YAML file.
type Store struct {
	path string
}

// NewStore creates a Store for the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. Returns nil, nil if the file does not exist.
// Keys absent from the file keep their default values.
func (s *Store) Load(_ context.Context) (*model.VersionConfig, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read version config: %w", err)
	}

	cfg := model.DefaultVersionConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", driven.ErrVersionConfigCorrupt, s.path, err)
	}

	return &cfg, nil
}

// Save writes the document, replacing the file atomically and creating
// the parent directory if needed.
func (s *Store) Save(_ context.Context, cfg model.VersionConfig) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create version config dir: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode version config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode version config: %w", err)
	}

	if err := atomic.WriteFile(s.path, &buf); err != nil {
		return fmt.Errorf("write version config: %w", err)
	}

	return nil
}
