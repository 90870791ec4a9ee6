package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/testsupport"
)

func writeFile(t *testing.T, body string) string {
	return testsupport.MustWriteFile(t, "formctl.yaml", body)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "")
	cfg, err := config.Load("")
	require.NoError(t, err)
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, state.ValidateOnBlur, cfg.Mode())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
backend:
  url: http://localhost:8888/api
  timeout: 3s
  headers:
    X-Account-Email: asha@example.in
validation:
  mode: change
  messages:
    required: "please fill in {{ label }}"
log:
  level: debug
  development: true
schemas:
  dir: ./forms
`)
	t.Setenv(config.EnvBackendURL, "https://api.example.in")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	want := config.Config{
		Backend: config.Backend{
			URL:         "https://api.example.in",
			Timeout:     3 * time.Second,
			DialTimeout: 5 * time.Second,
			Headers:     map[string]string{"X-Account-Email": "asha@example.in"},
		},
		Validation: config.Validation{
			Mode:     "change",
			Messages: map[string]string{"required": "please fill in {{ label }}"},
		},
		Log:     config.Log{Level: "debug", Development: true},
		Schemas: config.Schemas{Dir: "./forms"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, state.ValidateOnChange, cfg.Mode())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
	t.Run("unknown mode", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "validation:\n  mode: sometimes\n"))
		require.ErrorIs(t, err, config.ErrInvalid)
	})
	t.Run("bad level from env", func(t *testing.T) {
		t.Setenv(config.EnvLogLevel, "chatty")
		_, err := config.Load(writeFile(t, "{}\n"))
		require.ErrorIs(t, err, config.ErrInvalid)
	})
	t.Run("bad timeout from env", func(t *testing.T) {
		t.Setenv(config.EnvBackendTimeout, "soon")
		_, err := config.Load(writeFile(t, "{}\n"))
		require.ErrorIs(t, err, config.ErrInvalid)
	})
}
