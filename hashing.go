package kebapi

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

// Hash bundles are delimited strings in the format:
//
//	Algorithm.Iterations.Salt.Hash
//
// e.g. SHA512.10000.kMsQ/KtK0KmLAC/U3BNDZGQ72EomNdTe.0FiLdBGPh9oydfSPnSpX...
//
// The bundle is self describing: verification reads the algorithm, iteration
// count, and salt back out of the bundle itself, so stored credentials keep
// verifying after the defaults below change.
const (
	hashingAlgorithm  = "SHA512"
	hashingIterations = 10000
	hashingDelimiter  = "."
	hashingSaltLength = 24
	hashingKeyLength  = 32
)

// GenerateHashBundle creates a hash bundle from the given value. The value is
// typically a password; minimum length enforcement is the caller's job, only
// empty values are rejected here.
func GenerateHashBundle(value string) (string, error) {
	if value == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, hashingSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate salt")
	}

	key := pbkdf2.Key([]byte(value), salt, hashingIterations, hashingKeyLength, sha512.New)

	parts := []string{
		hashingAlgorithm,
		strconv.Itoa(hashingIterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}

	return strings.Join(parts, hashingDelimiter), nil
}

// VerifyHashBundle reports whether value is the value the bundle was
// generated from. A bundle that cannot be parsed returns an error, never
// false: corrupt storage must not read as "password incorrect".
func VerifyHashBundle(value, bundle string) (bool, error) {
	components := strings.Split(bundle, hashingDelimiter)
	if len(components) != 4 {
		return false, malformedBundle("expected 4 components", map[string]any{
			"components": len(components),
		})
	}

	algorithm := strings.TrimSpace(components[0])
	if algorithm != hashingAlgorithm {
		return false, malformedBundle("unsupported algorithm", map[string]any{
			"algorithm": algorithm,
		})
	}

	iterations, err := strconv.Atoi(strings.TrimSpace(components[1]))
	if err != nil || iterations <= 0 {
		return false, malformedBundle("invalid iteration count", map[string]any{
			"iterations": strings.TrimSpace(components[1]),
		})
	}

	salt, err := base64.StdEncoding.DecodeString(strings.TrimSpace(components[2]))
	if err != nil {
		return false, malformedBundle("undecodable salt", nil)
	}

	hash, err := base64.StdEncoding.DecodeString(strings.TrimSpace(components[3]))
	if err != nil {
		return false, malformedBundle("undecodable hash", nil)
	}

	// Hashes can't be un-hashed, so we re-derive from the candidate value
	// with the bundle's own salt and iterations and compare derived keys.
	key := pbkdf2.Key([]byte(value), salt, iterations, hashingKeyLength, sha512.New)

	return ConstantTimeEqual(key, hash), nil
}

// ConstantTimeEqual compares two byte slices without short-circuiting on the
// first mismatch: every iterable byte is visited before a result is returned,
// and a length mismatch still burns the full loop over the shorter input.
// Two nil/empty inputs are equal.
func ConstantTimeEqual(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var diff byte
	if len(a) != len(b) {
		diff = 1
	}

	for i := 0; i < n; i++ {
		diff |= a[i] ^ b[i]
	}

	return diff == 0
}

func malformedBundle(reason string, metadata map[string]any) error {
	return goerrors.Wrap(ErrMalformedHashBundle, ErrMalformedHashBundle.Category, reason).
		WithTextCode(ErrMalformedHashBundle.TextCode).
		WithMetadata(metadata)
}
