package kebapi

import (
	"context"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Authenticator orchestrates identifier resolution, credential verification,
// and token issuance. It holds no mutable state and is safe for concurrent
// use; the store lookup is its only suspension point.
type Authenticator struct {
	finder UserFinder
	tokens *TokenService
	logger Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(finder UserFinder, tokens *TokenService) *Authenticator {
	return &Authenticator{
		finder: finder,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// TokenService returns the TokenService used by this Authenticator
func (a *Authenticator) TokenService() *TokenService {
	return a.tokens
}

// Login tries to authenticate a user given their username or email, and
// their password. An unknown identifier and a wrong password both return
// ErrAuthenticationFailed; lookup failures and corrupt stored credentials
// surface as their own errors. Nothing is mutated on either path.
func (a *Authenticator) Login(ctx context.Context, usernameOrEmail, password string) (*SecurityToken, error) {
	user, err := a.resolveUser(ctx, usernameOrEmail)
	if err != nil {
		if IsRecordNotFound(err) {
			a.logger.Debug("Login identifier %q did not resolve", usernameOrEmail)
			return nil, ErrAuthenticationFailed
		}
		a.logger.Error("Login lookup error: %v", err)
		return nil, err
	}

	ok, err := VerifyHashBundle(password, user.PasswordHash)
	if err != nil {
		a.logger.Error("Login stored credential for user %d could not be parsed: %v", user.ID, err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "stored credential could not be verified")
	}

	if !ok {
		return nil, ErrAuthenticationFailed
	}

	return a.tokens.Mint(identityFromUser(user))
}

// resolveUser finds the user by username or email. The "@" check is only a
// hint to optimise lookup order; we always search the second column when the
// first misses.
func (a *Authenticator) resolveUser(ctx context.Context, identifier string) (*User, error) {
	lookups := []func(context.Context, string) (*User, error){
		a.finder.GetByUsername,
		a.finder.GetByEmail,
	}

	if strings.Contains(identifier, "@") {
		lookups[0], lookups[1] = lookups[1], lookups[0]
	}

	var lastErr error
	for _, lookup := range lookups {
		user, err := lookup(ctx, identifier)
		if err == nil {
			return user, nil
		}
		if !IsRecordNotFound(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

type authIdentity struct {
	id          string
	username    string
	email       string
	displayName string
	role        string
}

func (a authIdentity) ID() string          { return a.id }
func (a authIdentity) Username() string    { return a.username }
func (a authIdentity) Email() string       { return a.email }
func (a authIdentity) DisplayName() string { return a.displayName }
func (a authIdentity) Role() string        { return a.role }

var _ Identity = authIdentity{}

func identityFromUser(u *User) Identity {
	return authIdentity{
		id:          strconv.FormatInt(u.ID, 10),
		username:    u.Username,
		email:       u.Email,
		displayName: u.Name,
		role:        string(u.Role),
	}
}
