package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceTokenExpiry is the lifetime of tokens presented to the image host.
const ServiceTokenExpiry = 5 * time.Minute

// ServiceClaims identifies this server to the remote image host.
type ServiceClaims struct {
	Folder string `json:"folder,omitempty"`
	jwt.RegisteredClaims
}

// GenerateServiceToken creates a short-lived HS256 token for the image host,
// issued as apiKey and signed with apiSecret.
func GenerateServiceToken(apiKey, apiSecret, folder string) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	now := time.Now()
	claims := ServiceClaims{
		Folder: folder,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    apiKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ServiceTokenExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(apiSecret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateServiceToken parses and validates a service token, returning the
// claims. Image hosts (and tests standing in for them) use it.
func ValidateServiceToken(apiSecret, tokenStr string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ServiceClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(apiSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
