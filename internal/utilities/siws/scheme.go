package siws

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// Codec converts between wallet-native text and raw bytes.
type Codec interface {
	Encode(b []byte) string
	Decode(s string) ([]byte, error)
}

// SignatureScheme checks a signature over message made by the holder of
// publicKey. Any non-nil error means the signature is rejected.
type SignatureScheme interface {
	Verify(publicKey, message, signature []byte) error
}

// SizedScheme is implemented by signature schemes with fixed key and
// signature lengths. Verifier reports other lengths as malformed input
// instead of as a bad signature.
type SizedScheme interface {
	PublicKeySize() int
	SignatureSize() int
}

// Base58Codec is the Bitcoin-alphabet base58 used for Solana addresses and
// signatures.
type Base58Codec struct{}

func (Base58Codec) Encode(b []byte) string {
	return base58.Encode(b)
}

func (Base58Codec) Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty base58 string")
	}
	return base58.Decode(s)
}

// Ed25519Scheme verifies Ed25519 signatures.
type Ed25519Scheme struct{}

func (Ed25519Scheme) PublicKeySize() int { return ed25519.PublicKeySize }

func (Ed25519Scheme) SignatureSize() int { return ed25519.SignatureSize }

func (Ed25519Scheme) Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("ed25519 public key must be %d bytes, got %d bytes", ed25519.PublicKeySize, len(publicKey))
	}

	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("ed25519 signature must be %d bytes, got %d bytes", ed25519.SignatureSize, len(signature))
	}

	if !ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return fmt.Errorf("ed25519 signature does not match")
	}

	return nil
}
