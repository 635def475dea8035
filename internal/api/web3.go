package api

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/supabase/siws/internal/api/apierrors"
	"github.com/supabase/siws/internal/observability"
	"github.com/supabase/siws/internal/utilities"
	"github.com/supabase/siws/internal/utilities/siws"
)

type NonceParams struct{}

type NonceResponse struct {
	Nonce     string `json:"nonce"`
	ExpiresAt int64  `json:"expires_at"`
}

// Nonce hands out a nonce for the next message the client signs.
func (a *API) Nonce(w http.ResponseWriter, r *http.Request) error {
	params := &NonceParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	nonce, expiresAt, err := a.nonces.Issue()
	if err != nil {
		return apierrors.NewInternalServerError("Unable to generate nonce").WithInternalError(err)
	}

	return sendJSON(w, http.StatusOK, &NonceResponse{
		Nonce:     nonce,
		ExpiresAt: expiresAt.Unix(),
	})
}

// PrepareParams is a loosely typed message record keyed by field name.
type PrepareParams map[string]any

type PrepareResponse struct {
	Message string      `json:"message"`
	Fields  siws.Fields `json:"fields"`
}

// Prepare builds the canonical text a wallet should sign. A missing nonce is
// issued by the server and a missing Issued At is set to the current time.
func (a *API) Prepare(w http.ResponseWriter, r *http.Request) error {
	params := PrepareParams{}
	if err := retrieveRequestParams(r, &params); err != nil {
		return err
	}

	if _, ok := params[siws.FieldNonce]; !ok {
		nonce, _, err := a.nonces.Issue()
		if err != nil {
			return apierrors.NewInternalServerError("Unable to generate nonce").WithInternalError(err)
		}
		params[siws.FieldNonce] = nonce
	}

	msg, err := siws.NewMessageFromMap(params)
	if err != nil {
		return messageError(err)
	}

	if msg.IssuedAt() == nil {
		msg = msg.WithResolvedTimestamp(a.Now())
	}

	text, err := msg.PrepareMessage()
	if err != nil {
		return messageError(err)
	}

	return sendJSON(w, http.StatusOK, &PrepareResponse{
		Message: text,
		Fields:  msg.Fields(),
	})
}

type VerifyParams struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Mode      string `json:"mode,omitempty"`
}

// Verify checks a signed message and issues an access token for its
// address.
func (a *API) Verify(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	config := a.config

	params := &VerifyParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	if params.Message == "" || params.Signature == "" {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "message and signature are required")
	}

	if len(params.Message) > config.API.MaxMessageSize {
		return apierrors.NewRequestEntityTooLargeError(apierrors.ErrorCodeMessageTooLarge, "message must not exceed %d bytes", config.API.MaxMessageSize)
	}

	mode := config.SIWS.ParserMode
	if params.Mode != "" {
		var err error
		if mode, err = siws.ParseParserMode(params.Mode); err != nil {
			return messageError(err)
		}
	}

	msg, err := siws.ParseMessage(params.Message, mode)
	if err != nil {
		a.countVerification(r, "unparsable")
		return messageError(err)
	}

	observability.LogEntrySetField(r, "address", msg.Address())

	if !utilities.IsMessageURIAllowed(config, msg.URI()) {
		a.countVerification(r, "uri_not_allowed")
		return apierrors.NewOAuthError("invalid_grant", "Signed Solana message is using a URI which is not allowed on this server, message was signed for another app")
	}

	now := a.Now()

	if err := a.verifier.Verify(msg, params.Signature, siws.VerifyParams{
		Domain:    config.SIWS.Domain,
		Timestamp: now,
	}); err != nil {
		a.countVerification(r, verificationOutcome(err))
		return messageError(err)
	}

	issuedAt := msg.IssuedAt().Time()

	if now.After(issuedAt.Add(config.SIWS.MaximumValidityDuration)) {
		a.countVerification(r, "issued_too_long_ago")
		return apierrors.NewOAuthError("invalid_grant", "Solana message was issued too long ago")
	}

	if now.Before(issuedAt.Add(-config.SIWS.MaximumValidityDuration)) {
		a.countVerification(r, "issued_in_future")
		return apierrors.NewOAuthError("invalid_grant", "Solana message was issued too far in the future")
	}

	if !a.nonces.Consume(msg.Nonce()) {
		a.countVerification(r, "nonce_not_found")
		return apierrors.NewOAuthError("invalid_grant", "Nonce was not issued by this server, has expired or was already used")
	}

	token, err := a.issueAccessToken(msg)
	if err != nil {
		return apierrors.NewInternalServerError("Unable to issue access token").WithInternalError(err)
	}

	a.countVerification(r, "success")

	observability.GetLogEntry(r).Entry.WithContext(ctx).WithField("subject", token.Subject).Info("solana message verified")

	return sendJSON(w, http.StatusOK, token)
}

func (a *API) countVerification(r *http.Request, outcome string) {
	a.verifications.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, siws.ErrDomainMismatch):
		return "domain_mismatch"
	case errors.Is(err, siws.ErrNonceMismatch):
		return "nonce_mismatch"
	case errors.Is(err, siws.ErrExpiredMessage):
		return "expired"
	case errors.Is(err, siws.ErrNotYetValidMessage):
		return "not_yet_valid"
	case errors.Is(err, siws.ErrMalformedAddressOrSignature):
		return "malformed_address_or_signature"
	case errors.Is(err, siws.ErrInvalidSignature):
		return "invalid_signature"
	default:
		return "error"
	}
}
