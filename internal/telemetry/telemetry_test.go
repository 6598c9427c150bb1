package telemetry_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trr266/bitesized/internal/telemetry"
)

func TestConfigFromEnv(t *testing.T) {
	tests := map[string]struct {
		env      map[string]string
		expected telemetry.Config
		active   bool
	}{
		"defaults": {
			env:      map[string]string{},
			expected: telemetry.Config{Enabled: true, ServiceName: "bitesized"},
		},
		"endpoint": {
			env:      map[string]string{"BITESIZED_OTEL_ENDPOINT": "http://localhost:4318"},
			expected: telemetry.Config{Enabled: true, Endpoint: "http://localhost:4318", ServiceName: "bitesized"},
			active:   true,
		},
		"disabled": {
			env: map[string]string{
				"BITESIZED_OTEL_ENDPOINT":     "http://localhost:4318",
				"BITESIZED_OTEL_ENABLED":      "false",
				"BITESIZED_OTEL_SERVICE_NAME": "bitesized-staging",
			},
			expected: telemetry.Config{Endpoint: "http://localhost:4318", ServiceName: "bitesized-staging"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"BITESIZED_OTEL_ENDPOINT", "BITESIZED_OTEL_ENABLED", "BITESIZED_OTEL_SERVICE_NAME"} {
				t.Setenv(k, tc.env[k])
				if tc.env[k] == "" {
					require.NoError(t, os.Unsetenv(k))
				}
			}
			cfg, err := telemetry.ConfigFromEnv()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
			assert.Equal(t, tc.active, cfg.Active())
		})
	}
}

func TestConfigFromEnvInvalid(t *testing.T) {
	t.Setenv("BITESIZED_OTEL_ENABLED", "sometimes")

	_, err := telemetry.ConfigFromEnv()
	assert.Error(t, err)
}

func TestSetupNoop(t *testing.T) {
	t.Parallel()

	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{Enabled: true}, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetupExporter(t *testing.T) {
	// a non-routable address, nothing is exported before shutdown
	shutdown, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:     true,
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "bitesized-test",
	}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
