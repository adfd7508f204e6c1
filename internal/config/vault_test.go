package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"resumalyzer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

// newFakeVault serves sys/health and a fixed set of KVv2 secrets
func newFakeVault(t *testing.T, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/sys/health" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"initialized": true,
				"sealed":      false,
				"standby":     false,
				"version":     "1.15.0",
			})
			return
		}
		data, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     data,
				"metadata": map[string]any{"version": 3},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseKVv2(t *testing.T) {
	secret, err := parseKVv2(map[string]any{
		"data":     map[string]any{"keys": "a,b"},
		"metadata": map[string]any{"version": float64(2)},
	}, "secret/data/keys")
	require.NoError(t, err)
	assert.Equal(t, int64(2), secret.Version)
	assert.Equal(t, "a,b", secret.Data["keys"])

	_, err = parseKVv2(map[string]any{"keys": "a"}, "secret/data/keys")
	assert.Error(t, err, "KVv1 layout should be rejected")

	_, err = parseKVv2(map[string]any{"data": map[string]any{}}, "secret/data/keys")
	assert.Error(t, err, "missing metadata should be rejected")
}

func TestResolveVaultToken(t *testing.T) {
	tempDir := t.TempDir()
	tokenFile := filepath.Join(tempDir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token\n"), 0600))

	tests := []struct {
		name        string
		config      VaultConfig
		expected    string
		expectError bool
	}{
		{name: "inline token wins", config: VaultConfig{Token: "inline", TokenFile: tokenFile}, expected: "inline"},
		{name: "token from file", config: VaultConfig{TokenFile: tokenFile}, expected: "file-token"},
		{name: "missing file", config: VaultConfig{TokenFile: filepath.Join(tempDir, "nope")}, expectError: true},
		{name: "no token", config: VaultConfig{}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := resolveVaultToken(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}}
	err := ApplyVaultSecrets(config, newTestLogger())
	assert.NoError(t, err)
	assert.Empty(t, config.AI.APIKey)
}

func TestApplyVaultSecrets(t *testing.T) {
	srv := newFakeVault(t, map[string]map[string]any{
		"/v1/secret/data/resumalyzer/server": {"keys": "key-one, key-two,,"},
		"/v1/secret/data/resumalyzer/gemini": {"api_key": "gemini-secret-value"},
	})

	config := &Config{
		AI: AIConfig{APIKey: "from-env"},
		Vault: VaultConfig{
			Enabled: true,
			Address: srv.URL,
			Token:   "root",
			Secrets: VaultSecrets{
				APIKeys:   "secret/data/resumalyzer/server",
				GeminiKey: "secret/data/resumalyzer/gemini",
			},
		},
	}

	require.NoError(t, ApplyVaultSecrets(config, newTestLogger()))
	assert.Equal(t, []string{"key-one", "key-two"}, config.Server.APIKeys)
	assert.Equal(t, "gemini-secret-value", config.AI.APIKey, "vault should take precedence over env")
}

func TestApplyVaultSecretsMissingSecret(t *testing.T) {
	srv := newFakeVault(t, map[string]map[string]any{})

	config := &Config{
		Vault: VaultConfig{
			Enabled: true,
			Address: srv.URL,
			Token:   "root",
			Secrets: VaultSecrets{GeminiKey: "secret/data/missing"},
		},
	}

	err := ApplyVaultSecrets(config, newTestLogger())
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.TypeOf(err))
}

func TestServerAPIKeysVersion(t *testing.T) {
	srv := newFakeVault(t, map[string]map[string]any{
		"/v1/secret/data/keys": {"keys": "alpha"},
	})

	client, err := NewVaultClient(VaultConfig{
		Enabled: true,
		Address: srv.URL,
		Token:   "root",
		Secrets: VaultSecrets{APIKeys: "secret/data/keys"},
	}, newTestLogger())
	require.NoError(t, err)

	keys, version, err := client.ServerAPIKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, keys)
	assert.Equal(t, int64(3), version)
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, client)

	var nilClient *VaultClient
	_, err = nilClient.GetSecretV2("secret/data/x")
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****mnop", maskSecret("abcdefghijklmnop"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
