package gateway

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var signingMethod = jwt.SigningMethodHS256

// signPayload produces the compact HS256 token the gateway expects alongside
// each request body.
func signPayload(key string, claims jwt.MapClaims) (string, error) {
	if key == "" {
		return "", fmt.Errorf("gateway signing key is required")
	}
	token := jwt.NewWithClaims(signingMethod, claims)
	signed, err := token.SignedString([]byte(key))
	if err != nil {
		return "", fmt.Errorf("signing gateway payload: %w", err)
	}
	return signed, nil
}
