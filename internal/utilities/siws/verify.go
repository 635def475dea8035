package siws

import (
	"fmt"
	"time"
)

// VerifyParams holds the caller's expectations. Empty values are not checked;
// a zero Timestamp means "now".
type VerifyParams struct {
	// Domain the relying party expects. Compared verbatim.
	Domain string
	// Nonce the relying party issued. Compared verbatim.
	Nonce string
	// Timestamp to check the freshness window against.
	Timestamp time.Time
}

// Verifier checks a message's context and signature. The zero value is not
// usable; use NewVerifier.
type Verifier struct {
	Codec  Codec
	Scheme SignatureScheme
	Now    func() time.Time
}

// NewVerifier returns a Verifier for base58 encoded Ed25519 keys and
// signatures.
func NewVerifier() *Verifier {
	return &Verifier{
		Codec:  Base58Codec{},
		Scheme: Ed25519Scheme{},
		Now:    time.Now,
	}
}

var defaultVerifier = NewVerifier()

// Verify checks msg against params and the text-encoded signature. The checks
// run in a fixed order and the first failure is returned:
//
//  1. domain (ErrDomainMismatch)
//  2. nonce (ErrNonceMismatch)
//  3. expiration, inclusive (ErrExpiredMessage)
//  4. not before, inclusive (ErrNotYetValidMessage)
//  5. address and signature decoding (ErrMalformedAddressOrSignature)
//  6. signature (ErrInvalidSignature)
//
// The signature scheme is never invoked when an earlier check fails.
func (v *Verifier) Verify(msg *Message, signature string, params VerifyParams) error {
	message, err := msg.Bytes()
	if err != nil {
		return err
	}

	verificationTime := params.Timestamp
	if verificationTime.IsZero() {
		verificationTime = v.Now()
	}

	if params.Domain != "" && params.Domain != msg.domain {
		return &MismatchError{Field: FieldDomain, Expected: params.Domain, Actual: msg.domain, kind: ErrDomainMismatch}
	}

	if params.Nonce != "" && params.Nonce != msg.nonce {
		return &MismatchError{Field: FieldNonce, Expected: params.Nonce, Actual: msg.nonce, kind: ErrNonceMismatch}
	}

	if msg.expirationTime != nil && !verificationTime.Before(msg.expirationTime.Time()) {
		return &TimeWindowError{Bound: msg.expirationTime.Time(), VerificationTime: verificationTime, kind: ErrExpiredMessage}
	}

	if msg.notBefore != nil && !verificationTime.After(msg.notBefore.Time()) {
		return &TimeWindowError{Bound: msg.notBefore.Time(), VerificationTime: verificationTime, kind: ErrNotYetValidMessage}
	}

	publicKey, err := v.Codec.Decode(msg.address)
	if err != nil {
		return &DecodeError{Field: FieldAddress, Err: err}
	}

	signatureBytes, err := v.Codec.Decode(signature)
	if err != nil {
		return &DecodeError{Field: "signature", Err: err}
	}

	if sized, ok := v.Scheme.(SizedScheme); ok {
		if len(publicKey) != sized.PublicKeySize() {
			return &DecodeError{Field: FieldAddress, Err: fmt.Errorf("public key must be %d bytes, got %d bytes", sized.PublicKeySize(), len(publicKey))}
		}
		if len(signatureBytes) != sized.SignatureSize() {
			return &DecodeError{Field: "signature", Err: fmt.Errorf("signature must be %d bytes, got %d bytes", sized.SignatureSize(), len(signatureBytes))}
		}
	}

	if err := v.Scheme.Verify(publicKey, message, signatureBytes); err != nil {
		return errSignature
	}

	return nil
}

// Verify checks the message with a base58 Ed25519 verifier. See
// Verifier.Verify.
func (m *Message) Verify(signature string, params VerifyParams) error {
	return defaultVerifier.Verify(m, signature, params)
}
