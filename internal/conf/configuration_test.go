package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supabase/siws/internal/utilities/siws"
)

func TestMain(m *testing.M) {
	defer os.Clearenv()
	os.Exit(m.Run())
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("API_EXTERNAL_URL", "https://auth.example.com")
	t.Setenv("SIWS_JWT_SECRET", "secret")
}

func TestGlobal(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SIWS_API_REQUEST_ID_HEADER", "X-Request-ID")
	t.Setenv("SIWS_SOLANA_PARSER_MODE", "pattern")
	t.Setenv("SIWS_SOLANA_URI_ALLOW_LIST", "https://*.example.com/**,http://localhost:3000/**")

	gc, err := LoadGlobal("")
	require.NoError(t, err)
	require.NotNil(t, gc)

	assert.Equal(t, "X-Request-ID", gc.API.RequestIDHeader)
	assert.Equal(t, "8081", gc.API.Port)
	assert.Equal(t, siws.PatternMode, gc.SIWS.ParserMode)
	assert.Equal(t, "auth.example.com", gc.SIWS.Domain)
	assert.Equal(t, 5*time.Minute, gc.SIWS.NonceExpiryDuration)
	assert.Equal(t, defaultJWTExp, gc.JWT.Exp)
	assert.Equal(t, "https://auth.example.com", gc.JWT.Issuer)

	require.Len(t, gc.SIWS.URIAllowListMap, 2)
	assert.True(t, gc.SIWS.URIAllowListMap["https://*.example.com/**"].Match("https://app.example.com/login"))
	assert.False(t, gc.SIWS.URIAllowListMap["https://*.example.com/**"].Match("https://evil.com/login"))
}

func TestGlobalFromFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(filename, []byte("API_EXTERNAL_URL=https://files.example.com\nSIWS_JWT_SECRET=secret\nSIWS_SOLANA_DOMAIN=login.example.com\n"), 0600))

	t.Cleanup(func() {
		os.Unsetenv("API_EXTERNAL_URL")
		os.Unsetenv("SIWS_JWT_SECRET")
		os.Unsetenv("SIWS_SOLANA_DOMAIN")
	})

	gc, err := LoadGlobal(filename)
	require.NoError(t, err)

	assert.Equal(t, "login.example.com", gc.SIWS.Domain)
	assert.Equal(t, siws.GrammarMode, gc.SIWS.ParserMode)
}

func TestGlobalRejectsInvalidValues(t *testing.T) {
	examples := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown parser mode",
			env:  map[string]string{"SIWS_SOLANA_PARSER_MODE": "fuzzy"},
		},
		{
			name: "domain with a path",
			env:  map[string]string{"SIWS_SOLANA_DOMAIN": "example.com/login"},
		},
		{
			name: "zero nonce expiry",
			env:  map[string]string{"SIWS_SOLANA_NONCE_EXPIRY_DURATION": "0s"},
		},
		{
			name: "bad allow list pattern",
			env:  map[string]string{"SIWS_SOLANA_URI_ALLOW_LIST": "https://[example.com"},
		},
		{
			name: "unknown metrics exporter",
			env:  map[string]string{"SIWS_METRICS_EXPORTER": "statsd"},
		},
		{
			name: "missing jwt secret",
			env:  map[string]string{"SIWS_JWT_SECRET": ""},
		},
	}

	for _, example := range examples {
		t.Run(example.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range example.env {
				t.Setenv(k, v)
			}

			_, err := LoadGlobal("")
			require.Error(t, err)
		})
	}
}

func TestCORSAllAllowedHeaders(t *testing.T) {
	c := &CORSConfiguration{
		AllowedHeaders: []string{"X-Custom", "Content-Type", "X-Custom"},
	}

	require.Equal(t, []string{"Accept", "Content-Type", "X-Custom"}, c.AllAllowedHeaders([]string{"Accept", "Content-Type"}))
}
