package audit

import (
	"strings"
)

// Config defines the configuration for the audit middleware.
// A Config is immutable once handed to NewMiddleware: it is read concurrently
// by every in-flight request and must not be mutated afterwards.
type Config struct {
	// Enabled determines whether audit capture is active.
	// When false the middleware delegates directly with zero overhead.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// LogRequestBodies enables capture of request bodies.
	LogRequestBodies bool `json:"logRequestBodies" yaml:"logRequestBodies"`

	// LogResponseBodies enables capture of response bodies.
	LogResponseBodies bool `json:"logResponseBodies" yaml:"logResponseBodies"`

	// LogHeaders enables the redacted header mapping in entries.
	// When false the entry carries no header mapping at all, which is
	// distinct from an empty mapping.
	LogHeaders bool `json:"logHeaders" yaml:"logHeaders"`

	// IncludedMethods lists the HTTP methods whose request bodies are
	// eligible for capture. Default: POST, PUT, PATCH.
	IncludedMethods []string `json:"includedMethods,omitempty" yaml:"includedMethods,omitempty"`

	// ExcludedPaths lists path prefixes that bypass auditing entirely.
	// Matching is case-insensitive and segment-aware: "/api" excludes
	// "/api" and "/api/users" but not "/apikey".
	ExcludedPaths []string `json:"excludedPaths,omitempty" yaml:"excludedPaths,omitempty"`

	// ExcludedHeaders lists header names dropped from the logged mapping,
	// compared case-insensitively. Default: Authorization, Cookie.
	ExcludedHeaders []string `json:"excludedHeaders,omitempty" yaml:"excludedHeaders,omitempty"`

	// MaxRequestBodyBytes bounds the raw bytes read from a request body.
	// Zero disables request body capture without disabling the entry.
	// Default: 10240.
	MaxRequestBodyBytes int `json:"maxRequestBodyBytes" yaml:"maxRequestBodyBytes"`

	// MaxResponseBodyBytes bounds the response body text placed in the
	// entry. Zero disables response body capture. Default: 10240.
	MaxResponseBodyBytes int `json:"maxResponseBodyBytes" yaml:"maxResponseBodyBytes"`

	// OutputFile is the path the default file sink writes to.
	// If empty and Enabled is true, NewSink falls back to stdout.
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`

	// Extensions maps registered sink names to their configuration.
	// External sink backends register factories via RegisterSink.
	Extensions map[string]interface{} `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// DefaultMaxBodyBytes is the default capture bound for either side.
const DefaultMaxBodyBytes = 10240

// DefaultConfig returns a Config with the documented defaults.
// Audit capture itself is off until explicitly enabled.
func DefaultConfig() *Config {
	return &Config{
		Enabled:              false,
		LogRequestBodies:     true,
		LogResponseBodies:    true,
		LogHeaders:           true,
		IncludedMethods:      []string{"POST", "PUT", "PATCH"},
		ExcludedHeaders:      []string{"Authorization", "Cookie"},
		MaxRequestBodyBytes:  DefaultMaxBodyBytes,
		MaxResponseBodyBytes: DefaultMaxBodyBytes,
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MaxRequestBodyBytes < 0 {
		return &ConfigError{Field: "maxRequestBodyBytes", Message: "must be non-negative"}
	}
	if c.MaxResponseBodyBytes < 0 {
		return &ConfigError{Field: "maxResponseBodyBytes", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "audit config: " + e.Field + ": " + e.Message
}

// rules holds the normalized, precomputed lookups derived from a Config.
// Built once per middleware so request handling does no per-call
// normalization work.
type rules struct {
	methods      map[string]struct{}
	pathPrefixes []string
}

func newRules(c *Config) *rules {
	r := &rules{
		methods: make(map[string]struct{}, len(c.IncludedMethods)),
	}
	for _, m := range c.IncludedMethods {
		r.methods[strings.ToUpper(m)] = struct{}{}
	}
	for _, p := range c.ExcludedPaths {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if p != "/" {
			p = strings.TrimRight(p, "/")
			if p == "" {
				continue
			}
		}
		r.pathPrefixes = append(r.pathPrefixes, p)
	}
	return r
}

func (r *rules) methodIncluded(method string) bool {
	_, ok := r.methods[strings.ToUpper(method)]
	return ok
}

// pathExcluded reports whether path falls under any excluded prefix.
// The prefix must end on a segment boundary: "/api" matches "/api" and
// "/api/keys" but never "/apikey".
func (r *rules) pathExcluded(path string) bool {
	p := strings.ToLower(path)
	for _, prefix := range r.pathPrefixes {
		if prefix == "/" {
			return true
		}
		if p == prefix {
			return true
		}
		if strings.HasPrefix(p, prefix) && p[len(prefix)] == '/' {
			return true
		}
	}
	return false
}
