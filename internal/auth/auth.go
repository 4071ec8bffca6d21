// Package auth verifies bearer tokens issued by the surrounding identity
// service. Token issuing, registration, and login live outside this
// service; only signature and expiry verification happen here.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims carried by a reviewer token
type Claims struct {
	ReviewerID string `json:"reviewer_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates reviewer tokens against a shared HMAC secret
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier for the given secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ValidateToken parses and validates a JWT token string
func (v *Verifier) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
