package siws

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	btcbase58 "github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
)

type spyScheme struct {
	calls int
}

func (s *spyScheme) Verify(publicKey, message, signature []byte) error {
	s.calls++
	return nil
}

func signMessage(t *testing.T, msg *Message, privateKey ed25519.PrivateKey) string {
	t.Helper()

	text, err := msg.PrepareMessage()
	require.NoError(t, err)

	return btcbase58.Encode(ed25519.Sign(privateKey, []byte(text)))
}

func TestSIWSFlow(t *testing.T) {
	// 1) Generate Ed25519 key pair
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	// 2) Build the message the wallet will sign
	nonce, err := GenerateNonce()
	require.NoError(t, err)

	statement := "This is a test statement"
	msg, err := NewMessage(Fields{
		Domain:    "example.com",
		Address:   btcbase58.Encode(pubKey),
		Statement: &statement,
		URI:       "https://example.com",
		Version:   "1",
		ChainID:   1,
		Nonce:     nonce,
	})
	require.NoError(t, err)

	msg = msg.WithResolvedTimestamp(time.Now())

	rawMessage, err := msg.PrepareMessage()
	require.NoError(t, err)

	// 3) Sign the exact text
	signature := btcbase58.Encode(ed25519.Sign(privKey, []byte(rawMessage)))

	// 4) The relying party parses what it received and verifies
	parsed, err := ParseMessage(rawMessage, GrammarMode)
	require.NoError(t, err)

	require.NoError(t, parsed.Verify(signature, VerifyParams{
		Domain: "example.com",
		Nonce:  nonce,
	}))
}

func TestVerifyKnownKey(t *testing.T) {
	_, privateKey, _ := testKey()

	msg, err := NewMessage(exampleFields(t))
	require.NoError(t, err)

	signature := signMessage(t, msg, privateKey)
	at := time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)

	require.NoError(t, msg.Verify(signature, VerifyParams{Domain: "example.com", Nonce: "abcdefgh", Timestamp: at}))

	signatureBytes := btcbase58.Decode(signature)
	for i := range signatureBytes {
		flipped := append([]byte(nil), signatureBytes...)
		flipped[i] ^= 0x01

		err := msg.Verify(btcbase58.Encode(flipped), VerifyParams{Timestamp: at})
		require.ErrorIs(t, err, ErrInvalidSignature, "byte %d", i)
		require.ErrorIs(t, err, ErrVerification)
		require.Equal(t, ErrInvalidSignature.Error(), err.Error())
	}
}

func TestVerifySignedByAnotherKey(t *testing.T) {
	_, otherKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	msg, err := NewMessage(exampleFields(t))
	require.NoError(t, err)

	err = msg.Verify(signMessage(t, msg, otherKey), VerifyParams{})
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyContextChecksRunBeforeCrypto(t *testing.T) {
	fields := exampleFields(t)
	fields.Domain = "good.example"
	fields.ExpirationTime = mustTimestamp(t, "2024-01-02T00:00:00Z")
	fields.NotBefore = mustTimestamp(t, "2024-01-01T00:00:00Z")

	msg, err := NewMessage(fields)
	require.NoError(t, err)

	inWindow := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	examples := []struct {
		name   string
		params VerifyParams
		err    error
	}{
		{
			name:   "domain mismatch",
			params: VerifyParams{Domain: "evil.example", Timestamp: inWindow},
			err:    ErrDomainMismatch,
		},
		{
			name:   "domain mismatch wins over nonce mismatch",
			params: VerifyParams{Domain: "evil.example", Nonce: "zzzzzzzz", Timestamp: inWindow},
			err:    ErrDomainMismatch,
		},
		{
			name:   "nonce mismatch",
			params: VerifyParams{Domain: "good.example", Nonce: "zzzzzzzz", Timestamp: inWindow},
			err:    ErrNonceMismatch,
		},
		{
			name:   "nonce mismatch wins over expiry",
			params: VerifyParams{Nonce: "zzzzzzzz", Timestamp: inWindow.Add(48 * time.Hour)},
			err:    ErrNonceMismatch,
		},
		{
			name:   "expired at the exact expiration time",
			params: VerifyParams{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
			err:    ErrExpiredMessage,
		},
		{
			name:   "not yet valid at the exact not before time",
			params: VerifyParams{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			err:    ErrNotYetValidMessage,
		},
		{
			name:   "not yet valid before not before",
			params: VerifyParams{Timestamp: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
			err:    ErrNotYetValidMessage,
		},
	}

	for _, example := range examples {
		t.Run(example.name, func(t *testing.T) {
			spy := &spyScheme{}
			verifier := &Verifier{Codec: Base58Codec{}, Scheme: spy, Now: time.Now}

			err := verifier.Verify(msg, "signature", example.params)
			require.ErrorIs(t, err, example.err)
			require.ErrorIs(t, err, ErrVerification)
			require.Equal(t, 0, spy.calls)
		})
	}

	t.Run("mismatch names expected and actual", func(t *testing.T) {
		err := msg.Verify("signature", VerifyParams{Domain: "evil.example"})

		var merr *MismatchError
		require.True(t, errors.As(err, &merr))
		require.Equal(t, FieldDomain, merr.Field)
		require.Equal(t, "evil.example", merr.Expected)
		require.Equal(t, "good.example", merr.Actual)
	})
}

func TestVerifyFreshnessWindowBoundaries(t *testing.T) {
	_, privateKey, _ := testKey()

	fields := exampleFields(t)
	fields.ExpirationTime = mustTimestamp(t, "2024-01-02T00:00:00Z")
	fields.NotBefore = mustTimestamp(t, "2024-01-01T00:00:00Z")

	msg, err := NewMessage(fields)
	require.NoError(t, err)

	signature := signMessage(t, msg, privateKey)

	require.NoError(t, msg.Verify(signature, VerifyParams{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 1, time.UTC)}))
	require.NoError(t, msg.Verify(signature, VerifyParams{Timestamp: time.Date(2024, 1, 1, 23, 59, 59, 999999999, time.UTC)}))

	err = msg.Verify(signature, VerifyParams{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)})
	require.ErrorIs(t, err, ErrExpiredMessage)

	var werr *TimeWindowError
	require.True(t, errors.As(err, &werr))
	require.True(t, werr.Bound.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestVerifyUsesClockWhenNoTimestamp(t *testing.T) {
	_, privateKey, _ := testKey()

	fields := exampleFields(t)
	fields.ExpirationTime = mustTimestamp(t, "2024-01-02T00:00:00Z")

	msg, err := NewMessage(fields)
	require.NoError(t, err)

	signature := signMessage(t, msg, privateKey)

	verifier := NewVerifier()
	verifier.Now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, verifier.Verify(msg, signature, VerifyParams{}))

	verifier.Now = func() time.Time { return time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC) }
	require.ErrorIs(t, verifier.Verify(msg, signature, VerifyParams{}), ErrExpiredMessage)
}

func TestVerifyMalformedInput(t *testing.T) {
	_, privateKey, _ := testKey()

	t.Run("address is not base58", func(t *testing.T) {
		fields := exampleFields(t)
		fields.Address = "0OIl0OIl"

		msg, err := NewMessage(fields)
		require.NoError(t, err)

		err = msg.Verify(signMessage(t, msg, privateKey), VerifyParams{})
		require.ErrorIs(t, err, ErrMalformedAddressOrSignature)
		require.NotErrorIs(t, err, ErrInvalidSignature)

		var derr *DecodeError
		require.True(t, errors.As(err, &derr))
		require.Equal(t, FieldAddress, derr.Field)
	})

	t.Run("address has the wrong length", func(t *testing.T) {
		fields := exampleFields(t)
		fields.Address = btcbase58.Encode(make([]byte, 31))

		msg, err := NewMessage(fields)
		require.NoError(t, err)

		err = msg.Verify(signMessage(t, msg, privateKey), VerifyParams{})
		require.ErrorIs(t, err, ErrMalformedAddressOrSignature)
	})

	t.Run("signature is not base58", func(t *testing.T) {
		msg, err := NewMessage(exampleFields(t))
		require.NoError(t, err)

		err = msg.Verify("not base58!", VerifyParams{})
		require.ErrorIs(t, err, ErrMalformedAddressOrSignature)

		var derr *DecodeError
		require.True(t, errors.As(err, &derr))
		require.Equal(t, "signature", derr.Field)
	})

	t.Run("signature is empty", func(t *testing.T) {
		msg, err := NewMessage(exampleFields(t))
		require.NoError(t, err)

		require.ErrorIs(t, msg.Verify("", VerifyParams{}), ErrMalformedAddressOrSignature)
	})

	t.Run("signature is truncated", func(t *testing.T) {
		msg, err := NewMessage(exampleFields(t))
		require.NoError(t, err)

		signature := btcbase58.Decode(signMessage(t, msg, privateKey))
		err = msg.Verify(btcbase58.Encode(signature[:63]), VerifyParams{})
		require.ErrorIs(t, err, ErrMalformedAddressOrSignature)
	})

	t.Run("unresolved issued at", func(t *testing.T) {
		fields := exampleFields(t)
		fields.IssuedAt = nil

		msg, err := NewMessage(fields)
		require.NoError(t, err)

		require.ErrorIs(t, msg.Verify("signature", VerifyParams{}), ErrUnresolvedIssuedAt)
	})
}

func TestGenerateNonce(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		nonce, err := GenerateNonce()
		require.NoError(t, err)

		_, err = ValidateNonce(nonce)
		require.NoError(t, err)
		require.Regexp(t, "^[a-zA-Z0-9]+$", nonce)

		require.False(t, seen[nonce])
		seen[nonce] = true
	}
}
