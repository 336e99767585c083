package kebapi

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	DisplayName() string
	Role() string
}

// UserFinder is the credential store lookup the authenticator depends on.
// Implementations must honour ctx cancellation; the lookup is the only
// suspension point in the login flow.
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// TokenValidator validates a raw bearer token into claims
type TokenValidator interface {
	Validate(raw string) (AuthClaims, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] KEBAPI "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] KEBAPI "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] KEBAPI "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] KEBAPI "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
