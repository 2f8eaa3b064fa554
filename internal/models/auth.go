package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the identity assertion issued by the authentication layer.
// Only the subject is trusted; roles are always reloaded from storage.
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}
