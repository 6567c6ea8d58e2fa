package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// TokenLength is the length of an issued bearer token.
const TokenLength = 60

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateToken creates a random opaque bearer token.
func GenerateToken() (string, error) {
	result := make([]byte, TokenLength)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating token: %w", err)
		}
		result[i] = tokenCharset[n.Int64()]
	}
	return string(result), nil
}

// HashToken returns the digest under which a token is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
