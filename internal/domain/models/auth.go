package models

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// OperatorClaim is the JWT payload issued to operator dashboard sessions.
type OperatorClaim struct {
	OperatorID uuid.UUID `json:"operator_id"`
	Role       string    `json:"role"`
	jwt.StandardClaims
}
