// Package jwttoken mints and verifies requester tokens. A token's subject is
// the local uid of the user performing a search.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "usersearch/pkg/domain"
	dErrors "usersearch/pkg/domain-errors"
)

const defaultLeeway = 30 * time.Second

// Claims are the claims carried by requester tokens.
type Claims struct {
	jwt.RegisteredClaims
}

// Requester parses the subject as a local uid.
func (c *Claims) Requester() (id.UID, error) {
	uid, err := id.ParseUID(c.Subject)
	if err != nil || !uid.IsLocal() {
		return "", dErrors.New(dErrors.CodeUnauthorized, "token subject is not a local user")
	}
	return uid, nil
}

// JWTService signs and verifies HS256 requester tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	parser     *jwt.Parser
	now        func() time.Time
}

type Option func(*JWTService)

// WithLeeway tolerates clock skew between the signer and this process.
func WithLeeway(d time.Duration) Option {
	return func(s *JWTService) {
		s.parser = newParser(s.issuer, s.audience, d)
	}
}

func NewJWTService(signingKey, issuer, audience string, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		parser:     newParser(issuer, audience, defaultLeeway),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newParser(issuer, audience string, leeway time.Duration) *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
}

// GenerateAccessToken mints a token naming uid as the requester.
func (s *JWTService) GenerateAccessToken(uid id.UID, expiresIn time.Duration) (string, error) {
	if !uid.IsLocal() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "token subject must be a local uid")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, issuer, audience and expiry.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	case err != nil:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}
