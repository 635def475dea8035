package siws

import (
	"crypto/rand"
)

const nonceEntropyBytes = 12

// GenerateNonce returns a random alphanumeric nonce long enough to pass
// ValidateNonce.
func GenerateNonce() (string, error) {
	b := make([]byte, nonceEntropyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	nonce := Base58Codec{}.Encode(b)
	for len(nonce) < minNonceLength {
		nonce = "1" + nonce
	}

	return nonce, nil
}
