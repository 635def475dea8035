package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/supabase/siws/internal/utilities"
)

func TestStaticFieldsHook(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(&staticFieldsHook{fields: logrus.Fields{
		"service":   "siws",
		"component": "default",
	}})

	recorded := logrustest.NewLocal(logger)

	logger.WithField("component", "api").Info("hello")

	entry := recorded.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, "siws", entry.Data["service"])
	require.Equal(t, "api", entry.Data["component"])
}

func TestStructuredLogger(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	recorded := logrustest.NewLocal(logger)

	handler := NewStructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LogEntrySetField(r, "address", "7S3P4HxJpyyigGzodYwHtCxZyUQe9JiBMHyRWXArAaKv")
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/verify", nil)
	req = req.WithContext(utilities.WithRequestID(req.Context(), "req-1"))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := recorded.AllEntries()
	require.Len(t, entries, 2)

	require.Equal(t, "request started", entries[0].Message)
	require.Equal(t, "req-1", entries[0].Data["request_id"])
	require.Equal(t, "203.0.113.9", entries[0].Data["remote_addr"])

	require.Equal(t, "request completed", entries[1].Message)
	require.Equal(t, http.StatusCreated, entries[1].Data["status"])
	require.Equal(t, "7S3P4HxJpyyigGzodYwHtCxZyUQe9JiBMHyRWXArAaKv", entries[1].Data["address"])
}

func TestGetLogEntryWithoutLogger(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	entry := GetLogEntry(req)
	require.NotNil(t, entry)
	require.NotNil(t, entry.Entry)

	// not logged, so this is a no-op
	LogEntrySetField(req, "address", "x")
}
