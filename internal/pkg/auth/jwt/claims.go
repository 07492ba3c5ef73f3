package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued at login.
type Payload struct {
	// StandardClaims carries Exp, Iat and Iss.
	jwt.StandardClaims

	// ID is the account identifier the Identity Gate resolves through the user store.
	ID string `json:"id"`

	// Username is informational only; the store is authoritative.
	Username string `json:"username"`
}
