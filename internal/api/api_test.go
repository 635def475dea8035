package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supabase/siws/internal/api/apierrors"
	"github.com/supabase/siws/internal/conf"
)

const (
	apiTestVersion = "1"
	apiTestConfig  = "../../hack/test.env"
)

// setupAPIForTest creates a new API to run tests with.
func setupAPIForTest() (*API, *conf.GlobalConfiguration, error) {
	config, err := conf.LoadGlobal(apiTestConfig)
	if err != nil {
		return nil, nil, err
	}

	return NewAPIWithVersion(context.Background(), config, apiTestVersion), config, nil
}

func TestHealthCheck(t *testing.T) {
	api, _, err := setupAPIForTest()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var data HealthCheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	require.Equal(t, apiTestVersion, data.Version)
	require.Equal(t, "SIWS", data.Name)
}

func TestSettings(t *testing.T) {
	api, _, err := setupAPIForTest()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/settings", nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var data SettingsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	require.Equal(t, "example.com", data.Domain)
	require.Equal(t, "grammar", data.ParserMode)
	require.Equal(t, int64(300), data.NonceExpirySeconds)
	require.Equal(t, int64(600), data.MaximumValiditySeconds)
	require.Equal(t, []string{"http://localhost:3000/**"}, data.URIAllowList)
}

func TestNotFound(t *testing.T) {
	api, _, err := setupAPIForTest()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, apierrors.ErrorCodeNotFound, w.Header().Get(errorCodeHeaderName))
}

func TestEmptyVerifyRequest(t *testing.T) {
	api, _, err := setupAPIForTest()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/verify", nil)
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var data apierrors.HTTPError
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	require.Equal(t, apierrors.ErrorCodeValidationFailed, data.ErrorCode)
}

func TestRecovererHandlesPanics(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, apierrors.ErrorCodeUnexpectedFailure, w.Header().Get(errorCodeHeaderName))
}
