package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string   `json:"name"`
	Interval Duration `json:"interval"`

	repaired bool
}

func (c *testConfig) Validate() error {
	if time.Duration(c.Interval) == 0 {
		c.Interval = Duration(30 * time.Second)
		c.repaired = true
	}

	return nil
}

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

func TestLoadFile(t *testing.T) {
	path := writeTempFile(t, `{"name":"monitor","interval":"5s"}`)

	var cfg testConfig
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, "monitor", cfg.Name)
	assert.Equal(t, Duration(5*time.Second), cfg.Interval)
}

func TestLoadFileMissing(t *testing.T) {
	var cfg testConfig
	assert.Error(t, LoadFile("/nonexistent/config.json", &cfg))
}

func TestLoadFileBadJSON(t *testing.T) {
	path := writeTempFile(t, `{not json`)

	var cfg testConfig
	assert.Error(t, LoadFile(path, &cfg))
}

func TestLoadAndValidateRepairs(t *testing.T) {
	path := writeTempFile(t, `{"name":"monitor"}`)

	var cfg testConfig
	require.NoError(t, LoadAndValidate(path, &cfg))

	assert.True(t, cfg.repaired)
	assert.Equal(t, Duration(30*time.Second), cfg.Interval)
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected time.Duration
		wantErr  bool
	}{
		{"string form", `"1m30s"`, 90 * time.Second, false},
		{"numeric nanoseconds", `1000000000`, time.Second, false},
		{"bad string", `"not-a-duration"`, 0, true},
		{"wrong type", `[1,2]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := d.UnmarshalJSON([]byte(tt.json))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, Duration(tt.expected), d)
		})
	}
}
