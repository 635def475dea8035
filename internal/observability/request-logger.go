package observability

import (
	"fmt"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/supabase/siws/internal/utilities"
)

func NewStructuredLogger(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return chimiddleware.RequestLogger(&structuredLogger{logger})
}

type structuredLogger struct {
	Logger *logrus.Logger
}

func (l *structuredLogger) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	entry := &logEntry{Entry: logrus.NewEntry(l.Logger)}
	logFields := logrus.Fields{
		"component":   "api",
		"method":      r.Method,
		"path":        r.URL.Path,
		"remote_addr": utilities.GetIPAddress(r),
		"referer":     r.Referer(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}

	if reqID := utilities.GetRequestID(r.Context()); reqID != "" {
		logFields["request_id"] = reqID
	}

	entry.Entry = entry.Entry.WithFields(logFields)
	entry.Entry.Infoln("request started")
	return entry
}

type logEntry struct {
	Entry *logrus.Entry
}

func (e *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	e.Entry = e.Entry.WithFields(logrus.Fields{
		"status":   status,
		"duration": elapsed.Nanoseconds(),
	})

	e.Entry.Info("request completed")
}

func (e *logEntry) Panic(v interface{}, stack []byte) {
	e.Entry.WithFields(logrus.Fields{
		"stack": string(stack),
		"panic": fmt.Sprintf("%+v", v),
	}).Error("unhandled request panic")
}

// GetLogEntry returns the request's log entry, or a standard logger entry
// when the request is not logged.
func GetLogEntry(r *http.Request) *logEntry {
	entry, _ := chimiddleware.GetLogEntry(r).(*logEntry)
	if entry == nil {
		return &logEntry{Entry: logrus.NewEntry(logrus.StandardLogger())}
	}
	return entry
}

func LogEntrySetField(r *http.Request, key string, value interface{}) {
	if entry, ok := r.Context().Value(chimiddleware.LogEntryCtxKey).(*logEntry); ok {
		entry.Entry = entry.Entry.WithField(key, value)
	}
}

func LogEntrySetFields(r *http.Request, fields logrus.Fields) {
	if entry, ok := r.Context().Value(chimiddleware.LogEntryCtxKey).(*logEntry); ok {
		entry.Entry = entry.Entry.WithFields(fields)
	}
}
