package kebapi

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultExpireMinutes is used when TokenSettings.ExpireMinutes is negative
const DefaultExpireMinutes = 60

// TokenSettings holds the configuration the token service is built from.
// Validation happens once at construction and a failure there is fatal; the
// service never re-checks settings per call.
type TokenSettings struct {
	// SigningKey should be long and cryptic. It is what prevents tokens
	// being tampered with.
	SigningKey string `json:"-"`
	Issuer     string `json:"issuer"`
	Audience   string `json:"audience"`
	// ExpireMinutes of 0 is allowed and mints immediately expired tokens,
	// which is almost certainly useless in production but very useful in
	// tests. Negative values fall back to DefaultExpireMinutes.
	ExpireMinutes int `json:"expire_minutes"`
}

// Validate checks the required settings
func (s TokenSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SigningKey, validation.Required),
		validation.Field(&s.Issuer, validation.Required),
		validation.Field(&s.Audience, validation.Required),
	)
}

// SecurityToken is what a successful authentication returns. Token and
// Expires are derived from the same clock capture so they never disagree
// with the exp claim inside the signed payload.
type SecurityToken struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// TokenService mints and validates JWT session tokens. The audience is a
// single scalar; it becomes a one-element claim set on minted tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	expiration time.Duration
	logger     Logger
	nowFn      func() time.Time
}

// NewTokenService creates a TokenService from validated settings. Invalid
// settings are a construction error: a partially configured issuer must
// never run.
func NewTokenService(settings TokenSettings, logger Logger) (*TokenService, error) {
	if err := settings.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid token settings").
			WithTextCode("INVALID_TOKEN_SETTINGS")
	}

	expireMinutes := settings.ExpireMinutes
	if expireMinutes < 0 {
		expireMinutes = DefaultExpireMinutes
	}

	if logger == nil {
		logger = defLogger{}
	}

	return &TokenService{
		signingKey: []byte(settings.SigningKey),
		issuer:     settings.Issuer,
		audience:   settings.Audience,
		expiration: time.Duration(expireMinutes) * time.Minute,
		logger:     logger,
		nowFn:      time.Now,
	}, nil
}

// WithClock overrides the time source. Tests use it to pin issuance time.
func (ts *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		ts.nowFn = now
	}
	return ts
}

// Expiration returns the configured token lifetime
func (ts *TokenService) Expiration() time.Duration {
	return ts.expiration
}

// Mint creates a signed session token for the given identity with a minimum
// set of claims: subject, id, username, displayname, and role. One role per
// identity; see JWTClaims.
func (ts *TokenService) Mint(identity Identity) (*SecurityToken, error) {
	if identity == nil {
		return nil, goerrors.New("identity is required", goerrors.CategoryBadInput)
	}

	now := ts.nowFn()
	expires := now.Add(ts.expiration)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   ts.issuer,
			Subject:  identity.Username(),
			Audience: jwt.ClaimStrings{ts.audience},
			// jti guarantees the token is unique
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UID:      identity.ID(),
		Name:     identity.Username(),
		Display:  identity.DisplayName(),
		UserRole: identity.Role(),
	}

	signed, err := ts.SignClaims(claims)
	if err != nil {
		return nil, err
	}

	return &SecurityToken{
		Token:   signed,
		Expires: expires,
	}, nil
}

// SignClaims signs arbitrary JWT claims using the configured signing key
func (ts *TokenService) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Only HMAC signatures are accepted; issuer, audience, and expiry are all
// enforced.
func (ts *TokenService) Validate(raw string) (AuthClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	},
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(ts.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

var _ TokenValidator = (*TokenService)(nil)
