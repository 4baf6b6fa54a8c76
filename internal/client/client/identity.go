package client

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/notesync/internal/common"
)

// IdentityFromToken returns the subject of the access token. The signature
// is not checked here; the service verifies every call.
func IdentityFromToken(token string) (string, error) {
	if token == "" {
		return "", common.ErrNoIdentity
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	if claims.Subject == "" {
		return "", common.ErrNoIdentity
	}
	return claims.Subject, nil
}
