package auth

import "github.com/golang-jwt/jwt/v5"

// identityClaims carries the external identity of a user. The subject is the
// identity provider's stable user key; name is its display name.
type identityClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}
