package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, sink.Submit(ActionHTTPRequest, "GET /a", `{"method":"GET"}`, "alice"))
	require.NoError(t, sink.Submit(ActionHTTPRequest, "GET /b", `{"method":"GET"}`, ""))
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)

	assert.Equal(t, int64(1), records[0].Sequence)
	assert.Equal(t, int64(2), records[1].Sequence)
	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, "GET /a", records[0].Context)
	assert.Equal(t, "alice", records[0].User)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestFileSinkClosedRejectsSubmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	err = sink.Submit(ActionHTTPRequest, "", "{}", "")
	assert.ErrorContains(t, err, "closed")

	// Double close is fine.
	assert.NoError(t, sink.Close())
}

func TestFileSinkUnwritablePath(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "dir", "audit.log"))
	assert.Error(t, err)
}

func TestNoOpSink(t *testing.T) {
	sink := &NoOpSink{}
	assert.NoError(t, sink.Submit("a", "c", "m", "u"))
	assert.NoError(t, sink.Close())
}

func TestNewSinkDisabled(t *testing.T) {
	sink, err := NewSink(&Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, &NoOpSink{}, sink)

	sink, err = NewSink(nil)
	require.NoError(t, err)
	assert.IsType(t, &NoOpSink{}, sink)
}

func TestNewSinkFile(t *testing.T) {
	cfg := enabledConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "audit.log")

	sink, err := NewSink(cfg)
	require.NoError(t, err)
	defer sink.Close()

	assert.IsType(t, &FileSink{}, sink)
}

func TestNewSinkInvalidConfig(t *testing.T) {
	cfg := enabledConfig()
	cfg.MaxRequestBodyBytes = -1

	_, err := NewSink(cfg)
	assert.Error(t, err)
}

func TestNewSinkWithRegisteredExtension(t *testing.T) {
	ext := &captureSink{}
	RegisterSink("test-backend", func(config map[string]interface{}) (Sink, error) {
		assert.Equal(t, "value", config["option"])
		return ext, nil
	})

	cfg := enabledConfig()
	cfg.OutputFile = filepath.Join(t.TempDir(), "audit.log")
	cfg.Extensions = map[string]interface{}{
		"test-backend": map[string]interface{}{"option": "value"},
		"unregistered": map[string]interface{}{},
	}

	sink, err := NewSink(cfg)
	require.NoError(t, err)
	defer sink.Close()

	multi, ok := sink.(*MultiSink)
	require.True(t, ok, "expected a MultiSink over file + extension")
	assert.Equal(t, 2, multi.Len())

	require.NoError(t, sink.Submit(ActionHTTPRequest, "GET /x", "{}", ""))
	assert.Equal(t, 1, ext.count())
}

func TestMultiSinkFanOut(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	multi := NewMultiSink(a, nil, b)

	assert.Equal(t, 2, multi.Len())
	require.NoError(t, multi.Submit("act", "ctx", "msg", "usr"))
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestMultiSinkAggregatesErrors(t *testing.T) {
	boom := errors.New("boom")
	healthy := &captureSink{}
	failing := &captureSink{err: boom}
	multi := NewMultiSink(failing, healthy)

	err := multi.Submit("act", "ctx", "msg", "usr")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// The healthy sink still received the submission.
	assert.Equal(t, 1, healthy.count())

	var multiErr *MultiError
	require.ErrorAs(t, err, &multiErr)
	assert.Len(t, multiErr.Errors, 1)
}

func TestMultiSinkAdd(t *testing.T) {
	multi := NewMultiSink()
	assert.Equal(t, 0, multi.Len())

	multi.Add(&captureSink{})
	multi.Add(nil)
	assert.Equal(t, 1, multi.Len())
}

func TestMultiErrorMessage(t *testing.T) {
	single := &MultiError{Errors: []error{errors.New("only one")}}
	assert.Equal(t, "only one", single.Error())

	several := &MultiError{Errors: []error{errors.New("first"), errors.New("second")}}
	assert.Contains(t, several.Error(), "multiple errors:")
	assert.Contains(t, several.Error(), "first")
	assert.Contains(t, several.Error(), "second")
}
