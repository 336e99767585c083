package kebapi

import (
	goerrors "github.com/goliatone/go-errors"
)

// ErrAuthenticationFailed is the single outcome for an unknown identifier or
// a wrong password. Callers must not distinguish the two cases.
var ErrAuthenticationFailed = goerrors.New("authentication failed", goerrors.CategoryAuth).
	WithTextCode("AUTHENTICATION_FAILED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when validating a token past its expiry
var ErrTokenExpired = goerrors.New("token expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens we cannot parse or verify
var ErrTokenMalformed = goerrors.New("token malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is the error for required string values
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_VALUE").
	WithCode(goerrors.CodeBadRequest)

// ErrMalformedHashBundle indicates a stored credential that cannot be parsed.
// This is storage corruption, never "password incorrect".
var ErrMalformedHashBundle = goerrors.New("malformed hash bundle", goerrors.CategoryInternal).
	WithTextCode("MALFORMED_HASH_BUNDLE").
	WithCode(goerrors.CodeInternal)

// NewRecordNotFound builds the not-found error our repositories return
func NewRecordNotFound(kind string, metadata map[string]any) error {
	return goerrors.New(kind+" not found", goerrors.CategoryNotFound).
		WithTextCode("RECORD_NOT_FOUND").
		WithCode(goerrors.CodeNotFound).
		WithMetadata(metadata)
}

// IsRecordNotFound will check for repository misses
func IsRecordNotFound(err error) bool {
	return goerrors.IsNotFound(err)
}
