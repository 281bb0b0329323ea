package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by the bearer token the auth service issues. Signup and
// login live in that service; this backend only verifies the token and
// matches its subject against the ownerId in the request path.
type Claims struct {
	OwnerID string `json:"owner_id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"` // "buyer" or "farmer"
	jwt.RegisteredClaims
}
