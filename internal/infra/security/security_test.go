package security

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "wrong horse"), ErrPasswordMismatch)
	assert.Error(t, h.Compare("not-a-hash", "correct horse"))
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	_, err := BcryptHasher{Cost: bcrypt.MinCost}.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestBcryptHasherCostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, BcryptHasher{}.cost())
	assert.Equal(t, bcrypt.DefaultCost, BcryptHasher{Cost: 99}.cost())
	assert.Equal(t, 6, BcryptHasher{Cost: 6}.cost())
}

func TestRandomTokenGenerator(t *testing.T) {
	first, err := RandomTokenGenerator{}.NewToken()
	require.NoError(t, err)
	second, err := RandomTokenGenerator{}.NewToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	raw, err := base64.RawURLEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, defaultTokenSize)

	short, err := RandomTokenGenerator{Size: 8}.NewToken()
	require.NoError(t, err)
	assert.Len(t, short, base64.RawURLEncoding.EncodedLen(8))
}
