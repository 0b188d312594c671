package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_address": ":3000",
	"grpc_address": ":3300",
	"log_level": "warn",
	"media_base_url": "https://cdn.json-config.com",
	"upload_base_url": "https://upload.json-config.com",
	"trusted_subnet": "10.0.0.0/8"
}`

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp("", "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	t.Cleanup(func() {
		err := os.Remove(file.Name())
		require.NoError(t, err)
	})
	return file.Name()
}

func TestApplyDefaults(t *testing.T) {
	values := Config{RunAddr: ":9999"}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, ":9999", values.RunAddr)
	assert.Equal(t, ":3200", values.GRPCAddr)
	assert.Equal(t, "info", values.LogLevel)
	assert.Equal(t, "https://example.com", values.MediaBaseURL)
	assert.Equal(t, "https://upload.example.com", values.UploadBaseURL)
	assert.Equal(t, 10*time.Second, values.ShutdownTimeout)
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.TrustedSubnet)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, ":3300", cfg.GRPCAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://cdn.json-config.com", cfg.MediaBaseURL)
	assert.Equal(t, "https://upload.json-config.com", cfg.UploadBaseURL)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.env.com")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr) // env overrides json
	assert.Equal(t, "https://cdn.env.com", cfg.MediaBaseURL)
	assert.Equal(t, "https://upload.json-config.com", cfg.UploadBaseURL) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("MEDIA_BASE_URL", "https://cdn.env.com")

	cfg, err := New(WithArgs([]string{
		"-a", ":6000",
		"-g", ":6001",
		"-m", "https://cdn.cli.com",
		"-s", "3s",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, ":6001", cfg.GRPCAddr)
	assert.Equal(t, "https://cdn.cli.com", cfg.MediaBaseURL)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet) // from JSON
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "/var/log/videocatalog.log")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/videocatalog.log", cfg.LogFile)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown log level", key: "LOG_LEVEL", val: "loud"},
		{name: "media base is not a URL", key: "MEDIA_BASE_URL", val: "not a url"},
		{name: "trusted subnet is not a CIDR", key: "TRUSTED_SUBNET", val: "10.0.0.1"},
		{name: "address without port", key: "SERVER_ADDRESS", val: "localhost"},
		{name: "gRPC address without port", key: "GRPC_ADDRESS", val: "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}

func TestConfigMissingJSONFile(t *testing.T) {
	t.Setenv("CONFIG", "/nonexistent/config.json")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
