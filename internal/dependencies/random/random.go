package random

import (
	"crypto/rand"
	"io"
	"math/big"
)

// Random provides randomness that can be mocked for testing.
// It is also an io.Reader so it can feed ULID entropy.
type Random interface {
	io.Reader

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// URLSafeAlphabet is the base64url character set
const URLSafeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Read fills p from crypto/rand
func (r *CryptoRandom) Read(p []byte) (int, error) {
	return rand.Read(p)
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result)
}
