package jwttoken

import (
	"credvault/pkg/platform/middleware/auth"
)

// ValidatorAdapter exposes JWTService through the auth middleware's validator interface.
type ValidatorAdapter struct {
	service *JWTService
}

func NewValidatorAdapter(service *JWTService) *ValidatorAdapter {
	return &ValidatorAdapter{service: service}
}

func (a *ValidatorAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.JWTClaims{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		JTI:       claims.ID,
	}, nil
}
