package observability

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.25.0"
)

type interceptingResponseWriter struct {
	writer http.ResponseWriter

	statusCode int
}

func (w *interceptingResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode

	w.writer.WriteHeader(statusCode)
}

func (w *interceptingResponseWriter) Write(data []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.writer.Write(data)
}

func (w *interceptingResponseWriter) Header() http.Header {
	return w.writer.Header()
}

// countStatusCodesSafely counts the HTTP status codes per route. If the route
// cannot be identified via chi.RouteContext it counts with a noroute
// attribute.
func countStatusCodesSafely(w *interceptingResponseWriter, r *http.Request, counter metric.Int64Counter) {
	if counter == nil {
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			logrus.WithField("error", rec).Error("unable to count status codes safely, metrics may be off")
			counter.Add(
				r.Context(),
				1,
				metric.WithAttributes(
					attribute.Bool("noroute", true),
					attribute.Int("code", w.statusCode)),
			)
		}
	}()

	ctx := r.Context()

	routeContext := chi.RouteContext(ctx)
	routePattern := semconv.HTTPRouteKey.String(routeContext.RoutePattern())

	counter.Add(
		ctx,
		1,
		metric.WithAttributes(attribute.Int("code", w.statusCode), routePattern),
	)
}

// RequestMetrics returns a middleware counting response status codes. It
// must run inside the chi router so the route pattern is known.
func RequestMetrics() func(http.Handler) http.Handler {
	statusCodes, err := Meter(meterName).Int64Counter(
		"http_status_codes",
		metric.WithDescription("Number of returned HTTP status codes"),
	)
	if err != nil {
		logrus.WithError(err).Error("unable to get siws.http_status_codes counter metric")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writer := &interceptingResponseWriter{
				writer: w,
			}

			defer countStatusCodesSafely(writer, r, statusCodes)

			next.ServeHTTP(writer, r)
		})
	}
}
