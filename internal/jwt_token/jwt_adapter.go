package jwttoken

import (
	authmw "usersearch/pkg/platform/middleware/auth"
)

// JWTServiceAdapter lets the auth middleware verify tokens without importing
// the JWT library.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

// ValidateToken returns the requester named by a valid token. Tokens whose
// subject is not a local uid are rejected.
func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	requester, err := claims.Requester()
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Requester: requester, TokenID: claims.ID}, nil
}
