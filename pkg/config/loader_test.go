package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "audit.yaml", `
audit:
  enabled: true
  logHeaders: false
  excludedPaths:
    - /health
    - /metrics
  maxRequestBodyBytes: 2048
logging:
  level: debug
  format: json
`)

	f, err := Load(path)
	require.NoError(t, err)

	assert.True(t, f.Audit.Enabled)
	assert.False(t, f.Audit.LogHeaders)
	assert.Equal(t, []string{"/health", "/metrics"}, f.Audit.ExcludedPaths)
	assert.Equal(t, 2048, f.Audit.MaxRequestBodyBytes)
	assert.Equal(t, "debug", f.Logging.Level)
	assert.Equal(t, "json", f.Logging.Format)

	// Absent fields keep their defaults.
	assert.Equal(t, []string{"POST", "PUT", "PATCH"}, f.Audit.IncludedMethods)
	assert.Equal(t, []string{"Authorization", "Cookie"}, f.Audit.ExcludedHeaders)
	assert.Equal(t, 10240, f.Audit.MaxResponseBodyBytes)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "audit.json", `{
		"audit": {
			"enabled": true,
			"includedMethods": ["POST"],
			"outputFile": "/tmp/audit.log"
		}
	}`)

	f, err := Load(path)
	require.NoError(t, err)

	assert.True(t, f.Audit.Enabled)
	assert.Equal(t, []string{"POST"}, f.Audit.IncludedMethods)
	assert.Equal(t, "/tmp/audit.log", f.Audit.OutputFile)
	assert.Equal(t, "info", f.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.yaml", "")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadDirectory(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := ParseJSON([]byte(`{"audit": `))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := ParseYAML([]byte("audit:\n  enabled: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

func TestParseRejectsNegativeLimits(t *testing.T) {
	_, err := ParseYAML([]byte("audit:\n  maxRequestBodyBytes: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxRequestBodyBytes")
}
