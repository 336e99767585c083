package kebapi_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/goliatone/kebapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateHashBundle(t *testing.T) {
	t.Run("produces a four part self describing bundle", func(t *testing.T) {
		bundle, err := kebapi.GenerateHashBundle("Secr3tPass!")
		require.NoError(t, err)

		parts := strings.Split(bundle, ".")
		require.Len(t, parts, 4)

		assert.Equal(t, "SHA512", parts[0])
		assert.Equal(t, "10000", parts[1])

		salt, err := base64.StdEncoding.DecodeString(parts[2])
		require.NoError(t, err)
		assert.Len(t, salt, 24)

		hash, err := base64.StdEncoding.DecodeString(parts[3])
		require.NoError(t, err)
		assert.Len(t, hash, 32)
	})

	t.Run("same password hashes differently every time", func(t *testing.T) {
		first, err := kebapi.GenerateHashBundle("Secr3tPass!")
		require.NoError(t, err)

		second, err := kebapi.GenerateHashBundle("Secr3tPass!")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects an empty value", func(t *testing.T) {
		_, err := kebapi.GenerateHashBundle("")
		assert.ErrorIs(t, err, kebapi.ErrNoEmptyString)
	})
}

func TestVerifyHashBundle(t *testing.T) {
	bundle, err := kebapi.GenerateHashBundle("Secr3tPass!")
	require.NoError(t, err)

	t.Run("accepts the original password", func(t *testing.T) {
		ok, err := kebapi.VerifyHashBundle("Secr3tPass!", bundle)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a case variant", func(t *testing.T) {
		ok, err := kebapi.VerifyHashBundle("secr3tpass!", bundle)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rejects a wrong password without error", func(t *testing.T) {
		ok, err := kebapi.VerifyHashBundle("not-the-password", bundle)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed bundles are errors not mismatches", func(t *testing.T) {
		salt := base64.StdEncoding.EncodeToString(make([]byte, 24))
		hash := base64.StdEncoding.EncodeToString(make([]byte, 32))

		testCases := []struct {
			name   string
			bundle string
		}{
			{"empty bundle", ""},
			{"too few components", "SHA512.10000." + salt},
			{"too many components", "SHA512.10000." + salt + "." + hash + ".extra"},
			{"unknown algorithm", "SHA256.10000." + salt + "." + hash},
			{"non numeric iterations", "SHA512.lots." + salt + "." + hash},
			{"zero iterations", "SHA512.0." + salt + "." + hash},
			{"negative iterations", "SHA512.-5." + salt + "." + hash},
			{"invalid salt encoding", "SHA512.10000.!!!." + hash},
			{"invalid hash encoding", "SHA512.10000." + salt + ".!!!"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ok, err := kebapi.VerifyHashBundle("Secr3tPass!", tc.bundle)
				assert.ErrorIs(t, err, kebapi.ErrMalformedHashBundle)
				assert.False(t, ok)
			})
		}
	})
}

func TestConstantTimeEqual(t *testing.T) {
	testCases := []struct {
		name string
		a    []byte
		b    []byte
		want bool
	}{
		{"equal slices", []byte("abcd"), []byte("abcd"), true},
		{"different content", []byte("abcd"), []byte("abce"), false},
		{"different lengths", []byte("abcd"), []byte("abcde"), false},
		{"prefix is not equal", []byte("abcde"), []byte("abcd"), false},
		{"both nil", nil, nil, true},
		{"both empty", []byte{}, []byte{}, true},
		{"nil vs empty", nil, []byte{}, true},
		{"empty vs content", []byte{}, []byte("a"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, kebapi.ConstantTimeEqual(tc.a, tc.b))
		})
	}
}
