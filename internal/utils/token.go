package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// codeAlphabet matches the activation-code charset: uppercase letters and digits.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSessionToken returns a URL-safe token with 256 bits of randomness.
func GenerateSessionToken() (string, error) {
	buffer := make([]byte, 32)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// GenerateActivationCode draws length characters uniformly from the code
// alphabet using a cryptographically secure source. Uniqueness is not checked
// here; the store's unique key on code surfaces collisions at insert time.
func GenerateActivationCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[index.Int64()]
	}
	return string(code), nil
}
