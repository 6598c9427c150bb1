package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/trr266/bitesized/internal/siteconfig"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	tests := map[string]struct {
		args     []string
		env      map[string]string
		expected map[string]any
	}{
		"defaults": {
			args:     []string{"config"},
			expected: map[string]any{"environment": "development", "base_url": "/", "url": "http://localhost:3000"},
		},
		"environment-flag": {
			args:     []string{"config", "--env", "production"},
			expected: map[string]any{"environment": "production", "base_url": "/bite-sized-open-science/", "url": "https://trr266.github.io"},
		},
		"environment-variable": {
			args:     []string{"config"},
			env:      map[string]string{"BITESIZED_ENV": "staging"},
			expected: map[string]any{"environment": "staging", "base_url": "/bite-sized/"},
		},
		"override": {
			args:     []string{"config", "--env", "staging"},
			env:      map[string]string{"BITESIZED_BASE_URL": "/preview/"},
			expected: map[string]any{"environment": "staging", "base_url": "/preview/"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			out, err := execute(t, tc.args...)
			require.NoError(t, err)

			var printed map[string]any
			require.NoError(t, yaml.Unmarshal([]byte(out), &printed))
			for key, value := range tc.expected {
				assert.Equal(t, value, printed[key], key)
			}
		})
	}
}

func TestConfigCommandFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(file, []byte("title: Bite Sized Preview\nserver:\n  port: 8080\n"), 0o644))

	out, err := execute(t, "config", "--config", file)
	require.NoError(t, err)

	var printed siteconfig.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &printed))
	assert.Equal(t, "Bite Sized Preview", printed.Title)
	assert.Equal(t, 8080, printed.Server.Port)
	assert.Equal(t, "Open Science Tutorials", printed.Tagline)
}

func TestConfigCommandErrors(t *testing.T) {
	_, err := execute(t, "config", "--env", "nope")
	assert.ErrorIs(t, err, siteconfig.ErrUnknownEnvironment)

	t.Setenv("BITESIZED_ON_BROKEN_LINKS", "explode")
	_, err = execute(t, "config")
	assert.ErrorIs(t, err, siteconfig.ErrInvalidConfig)
}

func TestLogFlags(t *testing.T) {
	_, err := execute(t, "config", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")

	_, err = execute(t, "config", "--log-format", "xml")
	assert.ErrorContains(t, err, "invalid log format")

	_, err = execute(t, "config", "--log-level", "debug", "--log-format", "json")
	assert.NoError(t, err)
}

func TestBuildCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")

	stdout, err := execute(t, "build", "--env", "production", "--out", out)
	require.NoError(t, err)
	assert.Equal(t, "Built 6 pages and 11 assets to "+out+"\n", stdout)
	assert.FileExists(t, filepath.Join(out, "contact-thanks", "index.html"))
	assert.FileExists(t, filepath.Join(out, "404.html"))
	assert.FileExists(t, filepath.Join(out, "css", "custom.css"))
}

func TestServeMissingWebDir(t *testing.T) {
	_, err := execute(t, "serve", "--dev", "--web-dir", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "error reading web directory")
}

func TestVersionCommand(t *testing.T) {
	// configuration isn't loaded, so an invalid one doesn't matter
	t.Setenv("BITESIZED_SERVER_PORT", "0")

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "bitesized dev"), out)
	assert.Contains(t, out, "Go: go")
}
