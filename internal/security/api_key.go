package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	// APIKeyAlphabet skips characters that are easy to misread (0/O, 1/l/I).
	APIKeyAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	MinAPIKeyLength = 16
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// NewAPIKey returns a random key of at least MinAPIKeyLength characters.
func NewAPIKey(length int) (string, error) {
	if length < MinAPIKeyLength {
		length = MinAPIKeyLength
	}
	return RandomString(length, APIKeyAlphabet)
}

// RandomString draws each character uniformly from alphabet using crypto/rand.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errNegativeLength
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errEmptyAlphabet
	}

	size := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for index := range out {
		pick, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[index] = alphabet[pick.Int64()]
	}
	return string(out), nil
}
