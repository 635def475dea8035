package siws

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	btcbase58 "github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
)

// testKey is fixed so expected message texts can be written out in full.
func testKey() (ed25519.PublicKey, ed25519.PrivateKey, string) {
	privateKey := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{7}, ed25519.SeedSize))
	publicKey := privateKey.Public().(ed25519.PublicKey)

	return publicKey, privateKey, btcbase58.Encode(publicKey)
}

func mustTimestamp(t *testing.T, value string) *Timestamp {
	ts, err := ParseTimestamp(value)
	require.NoError(t, err)
	return &ts
}

func ptr[T any](v T) *T {
	return &v
}

func exampleFields(t *testing.T) Fields {
	_, _, address := testKey()

	return Fields{
		Domain:   "example.com",
		Address:  address,
		URI:      "https://example.com/login",
		Version:  "1",
		ChainID:  1,
		Nonce:    "abcdefgh",
		IssuedAt: mustTimestamp(t, "2024-01-01T00:00:00Z"),
	}
}

func fullFields(t *testing.T) Fields {
	fields := exampleFields(t)
	fields.Statement = ptr("I accept the Terms of Service")
	fields.ChainID = 5
	fields.ExpirationTime = mustTimestamp(t, "2024-01-02T00:00:00Z")
	fields.NotBefore = mustTimestamp(t, "2023-12-31T00:00:00.500+02:00")
	fields.RequestID = ptr("req-42")
	fields.Resources = []string{"ipfs://bafybeiemxf5abjwjbikoz4mc3a3dla6ual3jsgpdr4cjr3oz3evfyavhwq/", "https://example.com/my-web2-claim.json"}
	return fields
}

func requireSameFields(t *testing.T, expected, actual Fields) {
	t.Helper()

	requireSameTimestamp(t, expected.IssuedAt, actual.IssuedAt)
	requireSameTimestamp(t, expected.ExpirationTime, actual.ExpirationTime)
	requireSameTimestamp(t, expected.NotBefore, actual.NotBefore)

	expected.IssuedAt, actual.IssuedAt = nil, nil
	expected.ExpirationTime, actual.ExpirationTime = nil, nil
	expected.NotBefore, actual.NotBefore = nil, nil

	require.Equal(t, expected, actual)
}

func requireSameTimestamp(t *testing.T, expected, actual *Timestamp) {
	t.Helper()

	if expected == nil {
		require.Nil(t, actual)
		return
	}

	require.NotNil(t, actual)
	require.True(t, expected.Equal(*actual), "expected %s got %s", expected, actual)
}
