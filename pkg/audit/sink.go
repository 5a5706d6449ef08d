package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Sink is the durable destination for audit entries. The middleware treats
// Submit as fire-and-forget: a returned error is reported to the
// operational log and never retried, never surfaced to the client.
type Sink interface {
	// Submit records one audit submission. Implementations must be safe
	// for concurrent use. message is the serialized entry.
	Submit(action, context, message, user string) error

	// Close releases any resources held by the sink.
	Close() error
}

// NoOpSink discards all submissions. Used when audit logging is disabled.
type NoOpSink struct{}

// Submit discards the submission. Always returns nil.
func (s *NoOpSink) Submit(_, _, _, _ string) error {
	return nil
}

// Close is a no-op. Always returns nil.
func (s *NoOpSink) Close() error {
	return nil
}

var _ Sink = (*NoOpSink)(nil)

// Record is the persisted form of one submission in the file and stdout
// sinks, written as a JSON line.
type Record struct {
	// ID is a unique identifier for this record.
	ID string `json:"id"`

	// Timestamp is when the submission was accepted.
	Timestamp time.Time `json:"timestamp"`

	// Sequence is a monotonically increasing number for ordering records
	// within one sink instance.
	Sequence int64 `json:"sequence"`

	// Action classifies the submission (e.g. "http.request").
	Action string `json:"action"`

	// Context locates the submission (e.g. "GET /api/users?page=2").
	Context string `json:"context,omitempty"`

	// Message is the serialized audit entry.
	Message string `json:"message"`

	// User is the principal the entry is attributed to.
	User string `json:"user,omitempty"`
}

// FileSink appends submissions as JSON lines to a file.
type FileSink struct {
	file     *os.File
	encoder  *json.Encoder
	sequence int64
	mu       sync.Mutex
}

// NewFileSink opens (or creates) the file at path for appending.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to open sink file: %w", err)
	}

	return &FileSink{
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Submit writes one record to the file.
func (s *FileSink) Submit(action, context, message, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("audit: sink is closed")
	}

	rec := Record{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Sequence:  atomic.AddInt64(&s.sequence, 1),
		Action:    action,
		Context:   context,
		Message:   message,
		User:      user,
	}
	if err := s.encoder.Encode(rec); err != nil {
		return fmt.Errorf("audit: failed to encode record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	if err := s.file.Sync(); err != nil {
		// Still attempt the close.
		_ = err
	}

	err := s.file.Close()
	s.file = nil
	return err
}

var _ Sink = (*FileSink)(nil)

// StdoutSink writes submissions as JSON lines to stdout. Useful for
// containerized deployments where logs are collected from stdout.
type StdoutSink struct {
	encoder  *json.Encoder
	sequence int64
	mu       sync.Mutex
}

// NewStdoutSink creates a new StdoutSink.
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{
		encoder: json.NewEncoder(os.Stdout),
	}
}

// Submit writes one record to stdout.
func (s *StdoutSink) Submit(action, context, message, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Sequence:  atomic.AddInt64(&s.sequence, 1),
		Action:    action,
		Context:   context,
		Message:   message,
		User:      user,
	}
	if err := s.encoder.Encode(rec); err != nil {
		return fmt.Errorf("audit: failed to encode record: %w", err)
	}
	return nil
}

// Close is a no-op for the stdout sink.
func (s *StdoutSink) Close() error {
	return nil
}

var _ Sink = (*StdoutSink)(nil)

// NewSink builds the sink described by the configuration. Returns a
// NoOpSink when auditing is disabled. When the configuration names
// registered extension sinks in addition to the primary output, all of
// them receive every submission via a MultiSink.
func NewSink(cfg *Config) (Sink, error) {
	if cfg == nil || !cfg.Enabled {
		return &NoOpSink{}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var sinks []Sink

	if cfg.OutputFile != "" {
		fileSink, err := NewFileSink(cfg.OutputFile)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, fileSink)
	} else {
		sinks = append(sinks, NewStdoutSink())
	}

	for name, extConfig := range cfg.Extensions {
		factory, ok := GetRegisteredSink(name)
		if !ok {
			continue
		}
		extMap, ok := extConfig.(map[string]interface{})
		if !ok {
			continue
		}
		sink, err := factory(extMap)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
