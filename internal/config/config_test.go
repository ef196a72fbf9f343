package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "", cfg.StorePath)
	assert.Equal(t, "http://localhost:8080", cfg.API.HostURL)
	assert.Equal(t, "/api/v1", cfg.API.DefaultPath)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.API.BaseURL())
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 300*time.Second, cfg.TwoFA.Budget)
	assert.Equal(t, 3*time.Second, cfg.TwoFA.ExpiryRedirectDelay)
	assert.Equal(t, "8080", cfg.Stub.Port)
	assert.Equal(t, false, cfg.Stub.EnableHTTPS)
	assert.Equal(t, "cert.pem", cfg.Stub.CertFileName)
	assert.Equal(t, "key.pem", cfg.Stub.PrivateKeyFileName)
	assert.Equal(t, "devsecret", cfg.Stub.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Stub.SessionTTL)
	assert.Equal(t, 720*time.Hour, cfg.Stub.RememberTTL)
	assert.Equal(t, 5*time.Minute, cfg.Stub.ChallengeTTL)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "log level override",
			envVars: map[string]string{
				"LOG_LEVEL": "-4",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, -4, cfg.LogLevel)
			},
		},
		{
			name: "api config override",
			envVars: map[string]string{
				"API_HOST_URL":     "https://accounts.example.com",
				"API_DEFAULT_PATH": "/api/v2",
				"API_TIMEOUT":      "5s",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "https://accounts.example.com/api/v2", cfg.API.BaseURL())
				assert.Equal(t, 5*time.Second, cfg.API.Timeout)
			},
		},
		{
			name: "store and captcha override",
			envVars: map[string]string{
				"STORE_PATH":      "/tmp/account.db",
				"RECAPTCHA_TOKEN": "token-123",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "/tmp/account.db", cfg.StorePath)
				assert.Equal(t, "token-123", cfg.RecaptchaToken)
			},
		},
		{
			name: "twofa config override",
			envVars: map[string]string{
				"TWOFA_BUDGET":                "1m",
				"TWOFA_EXPIRY_REDIRECT_DELAY": "500ms",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, time.Minute, cfg.TwoFA.Budget)
				assert.Equal(t, 500*time.Millisecond, cfg.TwoFA.ExpiryRedirectDelay)
			},
		},
		{
			name: "stub config override",
			envVars: map[string]string{
				"STUB_PORT":                  "9090",
				"STUB_ENABLE_HTTPS":          "true",
				"STUB_CERT_FILE_NAME":        "custom.pem",
				"STUB_PRIVATE_KEY_FILE_NAME": "custom-key.pem",
				"STUB_JWT_SECRET":            "customsecret",
				"STUB_CHALLENGE_TTL":         "30s",
				"STUB_ISSUER":                "Example",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "9090", cfg.Stub.Port)
				assert.Equal(t, true, cfg.Stub.EnableHTTPS)
				assert.Equal(t, "custom.pem", cfg.Stub.CertFileName)
				assert.Equal(t, "custom-key.pem", cfg.Stub.PrivateKeyFileName)
				assert.Equal(t, "customsecret", cfg.Stub.JWTSecret)
				assert.Equal(t, 30*time.Second, cfg.Stub.ChallengeTTL)
				assert.Equal(t, "Example", cfg.Stub.Issuer)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestNewConfig_InvalidDuration(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}
