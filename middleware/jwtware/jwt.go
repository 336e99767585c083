// Package jwtware is the fiber middleware that turns a bearer token into
// verified claims in the request context. It mirrors the root package's
// claim accessors rather than importing them to avoid an import cycle.
package jwtware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// AuthClaims mirrors the claim accessors the root package exposes
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

// TokenValidatorFunc validates a raw bearer token into claims. The validator
// owns the allow-listed signing algorithm, issuer, audience, and expiry
// checks; the middleware only moves bytes and stores the result.
type TokenValidatorFunc func(raw string) (AuthClaims, error)

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(*fiber.Ctx) bool
	// ErrorHandler handles extraction and validation failures
	ErrorHandler fiber.ErrorHandler
	// Validator is required
	Validator TokenValidatorFunc
	// ContextKey is the Locals key the claims are stored under
	ContextKey string
	// TokenLookup is a comma separated list of "<source>:<name>" entries,
	// e.g. "header:Authorization,cookie:jwt,query:auth_token"
	TokenLookup string
	AuthScheme  string
}

// New returns a fiber handler that extracts, validates, and stores claims
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)
	extractors := GetExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Validator(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		return c.Next()
	}
}

// ClaimsFromContext retrieves validated claims stored by New
func ClaimsFromContext(c *fiber.Ctx, contextKey string) (AuthClaims, bool) {
	claims, ok := c.Locals(contextKey).(AuthClaims)
	return claims, ok
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: JWT middleware configuration: Validator is required.")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			if errors.Is(err, ErrJWTMissingOrMalformed) {
				return c.Status(fiber.StatusBadRequest).SendString(ErrJWTMissingOrMalformed.Error())
			}
			return c.Status(fiber.StatusUnauthorized).SendString("Invalid or expired token")
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// JWTExtractor pulls a raw token out of a request
type JWTExtractor func(c *fiber.Ctx) (string, error)

// ExtractRawToken tries each extractor until one yields a token
func ExtractRawToken(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// GetExtractors parses a token lookup string into extractor functions
func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		authScheme = strings.TrimSpace(authScheme)
		l := len(authScheme)
		if l == 0 {
			return "", ErrJWTMissingOrMalformed
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func jwtFromQuery(param string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func jwtFromCookie(name string) JWTExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
