// Package config loads the process-wide audit configuration from a file.
// The configuration is read once at startup; the resulting values are
// immutable and shared by reference with every request-scoped invocation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getaudit/auditd/pkg/audit"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// File is the on-disk configuration document.
type File struct {
	// Audit configures the audit middleware and its sink.
	Audit *audit.Config `json:"audit" yaml:"audit"`

	// Logging configures the operational logger.
	Logging Logging `json:"logging" yaml:"logging"`
}

// Logging holds operational logger settings as written in the file.
type Logging struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is the output format ("text" or "json").
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Load reads a configuration File from a JSON or YAML file. The format is
// auto-detected by extension (.yaml/.yml for YAML, otherwise JSON).
// Missing audit fields keep their defaults. The loaded audit section is
// validated before being returned.
func Load(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseJSON parses a configuration document from JSON bytes.
func ParseJSON(data []byte) (*File, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}

	f := newWithDefaults()
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return validated(f)
}

// ParseYAML parses a configuration document from YAML bytes.
func ParseYAML(data []byte) (*File, error) {
	f := newWithDefaults()
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return validated(f)
}

// newWithDefaults pre-fills the document so unmarshalling overlays the
// file's values onto the defaults rather than zeroing absent fields.
func newWithDefaults() *File {
	return &File{
		Audit: audit.DefaultConfig(),
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

func validated(f *File) (*File, error) {
	if f.Audit == nil {
		f.Audit = audit.DefaultConfig()
	}
	if err := f.Audit.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}
