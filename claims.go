package kebapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the verified-claims view consumed by authorization. By the
// time a caller holds one of these the token signature and expiry have
// already been checked.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	DisplayName() string
	Role() string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete claim set we embed in session tokens. The model
// is single role per user; multi-role support would turn UserRole into a
// claim set rather than a scalar.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID      string `json:"id,omitempty"`
	Name     string `json:"username,omitempty"`
	Display  string `json:"displayname,omitempty"`
	UserRole string `json:"role,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user id claim. All claims are strings by definition,
// including this one, even though it carries a numeric id.
func (c *JWTClaims) UserID() string {
	return c.UID
}

// Username returns the username claim
func (c *JWTClaims) Username() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject()
}

// DisplayName returns the display name claim
func (c *JWTClaims) DisplayName() string {
	return c.Display
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// HasRole checks if the claims carry a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole != "" && c.UserRole == role
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
