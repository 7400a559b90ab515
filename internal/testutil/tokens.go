package testutil

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// SignClaims signs arbitrary claims with DefaultSecret. Clients only decode
// tokens structurally, so any key works for session tests.
func SignClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(DefaultSecret))
	if err != nil {
		t.Fatalf("failed to sign claims: %v", err)
	}
	return token
}
