package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/uniedit/invite-server/internal/port/outbound"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// Config holds JWT configuration.
type Config struct {
	Secret string
	Issuer string
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Validator validates HS256 access tokens issued by the identity service.
type Validator struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewValidator creates a new token validator.
func NewValidator(cfg *Config) *Validator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Validator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		parser: jwt.NewParser(opts...),
	}
}

// ValidateToken parses tokenString and returns its identity claims.
func (v *Validator) ValidateToken(tokenString string) (*outbound.JWTClaims, error) {
	var c claims
	_, err := v.parser.ParseWithClaims(tokenString, &c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID in token", ErrInvalidToken)
	}

	return &outbound.JWTClaims{
		UserID: userID,
		Email:  c.Email,
	}, nil
}

// Issue signs an access token for userID. Used by tooling and tests.
func (v *Validator) Issue(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

var _ outbound.TokenValidatorPort = (*Validator)(nil)
