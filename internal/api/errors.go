package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/supabase/siws/internal/api/apierrors"
	"github.com/supabase/siws/internal/observability"
	"github.com/supabase/siws/internal/utilities"
	"github.com/supabase/siws/internal/utilities/siws"
)

const errorCodeHeaderName = "x-siws-error-code"

// Recoverer is a middleware that recovers from panics, logs the panic (and a
// backtrace), and returns a HTTP 500 (Internal Server Error) status if
// possible. Recoverer prints a request ID if one is provided.
func recoverer(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				observability.GetLogEntry(r).Panic(rvr, debug.Stack())

				se := &apierrors.HTTPError{
					HTTPStatus: http.StatusInternalServerError,
					Message:    http.StatusText(http.StatusInternalServerError),
				}
				HandleResponseError(se, w, r)
			}
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// ErrorCause is an error interface that contains the method Cause() for returning root cause errors
type ErrorCause interface {
	Cause() error
}

func HandleResponseError(err error, w http.ResponseWriter, r *http.Request) {
	log := observability.GetLogEntry(r).Entry
	errorID := utilities.GetRequestID(r.Context())

	switch e := err.(type) {
	case *apierrors.HTTPError:
		switch {
		case e.HTTPStatus >= http.StatusInternalServerError:
			e.ErrorID = errorID
			// this will get us the stack trace too
			log.WithError(e.Cause()).Error(e.Error())
		default:
			log.WithError(e.Cause()).Info(e.Error())
		}

		if e.ErrorCode == "" {
			if e.HTTPStatus == http.StatusInternalServerError {
				e.ErrorCode = apierrors.ErrorCodeUnexpectedFailure
			} else {
				e.ErrorCode = apierrors.ErrorCodeUnknown
			}
		}

		w.Header().Set(errorCodeHeaderName, e.ErrorCode)

		if jsonErr := sendJSON(w, e.HTTPStatus, e); jsonErr != nil && jsonErr != context.DeadlineExceeded {
			log.WithError(jsonErr).Warn("Failed to send JSON on ResponseWriter")
		}

	case *apierrors.OAuthError:
		log.WithError(e.Cause()).Info(e.Error())
		if jsonErr := sendJSON(w, http.StatusBadRequest, e); jsonErr != nil && jsonErr != context.DeadlineExceeded {
			log.WithError(jsonErr).Warn("Failed to send JSON on ResponseWriter")
		}

	case ErrorCause:
		HandleResponseError(e.Cause(), w, r)

	default:
		log.WithError(e).Errorf("Unhandled server error: %s", e.Error())

		httpError := apierrors.HTTPError{
			HTTPStatus: http.StatusInternalServerError,
			ErrorCode:  apierrors.ErrorCodeUnexpectedFailure,
			Message:    "Unexpected failure, please check server logs for more information",
			ErrorID:    errorID,
		}

		if jsonErr := sendJSON(w, http.StatusInternalServerError, httpError); jsonErr != nil && jsonErr != context.DeadlineExceeded {
			log.WithError(jsonErr).Warn("Failed to send JSON on ResponseWriter")
		}
	}
}

// messageError turns an error from the siws package into the response the
// client should see. Verification failures are reported as OAuth
// invalid_grant errors; everything wrong with the message itself is a bad
// request naming the offending field.
func messageError(err error) error {
	switch {
	case errors.Is(err, siws.ErrUnknownParserMode):
		return apierrors.NewBadRequestError(apierrors.ErrorCodeUnknownParserMode, "Unknown parser mode, supported values are 'grammar' or 'pattern'").WithInternalError(err)

	case errors.Is(err, siws.ErrParsing):
		return apierrors.NewBadRequestError(apierrors.ErrorCodeMessageUnparsable, "%s", trimPackagePrefix(err)).WithInternalError(err)

	case errors.Is(err, siws.ErrInvalidFieldType):
		return apierrors.NewBadRequestError(apierrors.ErrorCodeMessageInvalidType, "%s", trimPackagePrefix(err)).WithInternalError(err)

	case errors.Is(err, siws.ErrMalformedURI):
		return apierrors.NewBadRequestError(apierrors.ErrorCodeMessageMalformedURI, "%s", trimPackagePrefix(err)).WithInternalError(err)

	case errors.Is(err, siws.ErrValidation):
		return apierrors.NewBadRequestError(apierrors.ErrorCodeMessageInvalid, "%s", trimPackagePrefix(err)).WithInternalError(err)

	case errors.Is(err, siws.ErrUnresolvedIssuedAt):
		return apierrors.NewBadRequestError(apierrors.ErrorCodeMessageUnresolved, "Message has no Issued At").WithInternalError(err)

	case errors.Is(err, siws.ErrDomainMismatch):
		return apierrors.NewOAuthError("invalid_grant", "Signed Solana message is using a domain that is not allowed on this server").WithInternalError(err)

	case errors.Is(err, siws.ErrNonceMismatch):
		return apierrors.NewOAuthError("invalid_grant", "Signed Solana message is using a nonce that was not issued for it").WithInternalError(err)

	case errors.Is(err, siws.ErrExpiredMessage):
		return apierrors.NewOAuthError("invalid_grant", "Signed Solana message is expired").WithInternalError(err)

	case errors.Is(err, siws.ErrNotYetValidMessage):
		return apierrors.NewOAuthError("invalid_grant", "Signed Solana message becomes valid in the future").WithInternalError(err)

	case errors.Is(err, siws.ErrMalformedAddressOrSignature):
		return apierrors.NewOAuthError("invalid_grant", "Address or signature is not a base58 encoded Ed25519 key or signature").WithInternalError(err)

	case errors.Is(err, siws.ErrInvalidSignature):
		return apierrors.NewOAuthError("invalid_grant", "Signature does not match address in message").WithInternalError(err)

	default:
		return apierrors.NewInternalServerError("Unexpected failure handling the message").WithInternalError(err)
	}
}

func trimPackagePrefix(err error) string {
	return strings.TrimPrefix(err.Error(), "siws: ")
}
