package api

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"

	"github.com/supabase/siws/internal/api/apierrors"
	"github.com/supabase/siws/internal/conf"
	"github.com/supabase/siws/internal/observability"
	"github.com/supabase/siws/internal/utilities/siws"
)

const defaultVersion = "unknown version"

// API is the main REST API
type API struct {
	handler http.Handler
	config  *conf.GlobalConfiguration
	version string

	nonces        *NonceStore
	verifier      *siws.Verifier
	verifications metric.Int64Counter

	// overrideTime can be used to override the clock used by handlers. Should only be used in tests!
	overrideTime func() time.Time
}

func (a *API) Now() time.Time {
	if a.overrideTime != nil {
		return a.overrideTime()
	}

	return time.Now()
}

// NewAPI instantiates a new REST API
func NewAPI(globalConfig *conf.GlobalConfiguration) *API {
	return NewAPIWithVersion(context.Background(), globalConfig, defaultVersion)
}

// NewAPIWithVersion creates a new REST API using the specified version
func NewAPIWithVersion(ctx context.Context, globalConfig *conf.GlobalConfiguration, version string) *API {
	api := &API{config: globalConfig, version: version}

	api.nonces = NewNonceStore(globalConfig.SIWS.NonceExpiryDuration, api.Now)

	api.verifier = siws.NewVerifier()
	api.verifier.Now = api.Now

	api.verifications = observability.ObtainMetricCounter("siws_verifications", "Number of signed message verifications by outcome")

	logger := observability.NewStructuredLogger(logrus.StandardLogger())

	r := newRouter()
	r.Use(addRequestID(globalConfig))

	if globalConfig.Metrics.Enabled {
		r.UseBypass(observability.RequestMetrics())
	}

	r.UseBypass(recoverer)

	if globalConfig.API.MaxRequestDuration > 0 {
		r.UseBypass(chimiddleware.Timeout(globalConfig.API.MaxRequestDuration))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) error {
		return apierrors.NewNotFoundError(apierrors.ErrorCodeNotFound, "Not found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) error {
		return apierrors.NewHTTPError(http.StatusMethodNotAllowed, apierrors.ErrorCodeUnknown, "Method not allowed")
	})

	r.Get("/health", api.HealthCheck)

	r.Route("/", func(r *router) {
		r.UseBypass(logger)

		r.Get("/settings", api.Settings)

		r.Post("/nonce", api.Nonce)
		r.Post("/prepare", api.Prepare)
		r.Post("/verify", api.Verify)
	})

	corsHandler := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   globalConfig.CORS.AllAllowedHeaders([]string{"Accept", "Authorization", "Content-Type", "X-Client-IP", "X-Client-Info"}),
		ExposedHeaders:   []string{errorCodeHeaderName},
		AllowCredentials: true,
	})

	api.handler = corsHandler.Handler(r)
	return api
}

type HealthCheckResponse struct {
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HealthCheck endpoint indicates if the siws api service is available
func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	return sendJSON(w, http.StatusOK, HealthCheckResponse{
		Version:     a.version,
		Name:        "SIWS",
		Description: "SIWS issues nonces and verifies Sign In With Solana messages",
	})
}

// ServeHTTP implements the http.Handler interface by passing the request along
// to its underlying Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
