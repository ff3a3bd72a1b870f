package outbound

import "github.com/google/uuid"

// JWTClaims represents the identity carried by a bearer token.
type JWTClaims struct {
	UserID uuid.UUID
	Email  string
}

// TokenValidatorPort validates bearer tokens.
type TokenValidatorPort interface {
	ValidateToken(token string) (*JWTClaims, error)
}
