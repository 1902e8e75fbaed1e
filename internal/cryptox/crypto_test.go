package cryptox

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastParams(t *testing.T) {
	t.Helper()
	origPin, origCost := PinParams, PasswordCost
	PinParams = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PinParams, PasswordCost = origPin, origCost })
}

func TestHashPin_RoundTrip(t *testing.T) {
	fastParams(t)

	hash, err := HashPin("5678")
	require.NoError(t, err)
	assert.NotContains(t, hash, "5678")

	ok, err := ComparePin(hash, "5678")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePin(hash, "0000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPin_SaltedHashesDiffer(t *testing.T) {
	fastParams(t)

	a, err := HashPin("1234")
	require.NoError(t, err)
	b, err := HashPin("1234")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPin_Empty(t *testing.T) {
	_, err := HashPin("  ")
	require.Error(t, err)
}

func TestComparePin_MalformedHash(t *testing.T) {
	ok, err := ComparePin("not-a-hash", "1234")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestPassword(t *testing.T) {
	fastParams(t)

	hash, err := HashPassword([]byte("s3cret"))
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, []byte("s3cret")))
	assert.False(t, CheckPassword(hash, []byte("wrong")))
}
