package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformed(t *testing.T) {
	_, err := VerifyPassword("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrMalformedHash)

	_, err = VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$abc$def")
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestTokenRoundTrip(t *testing.T) {
	Init()

	token, err := CreateToken("4cf9c2a9-13a1-4a2a-9d3e-6c02a7a80001")
	require.NoError(t, err)

	sub, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "4cf9c2a9-13a1-4a2a-9d3e-6c02a7a80001", sub)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	Init()

	_, err := VerifyToken("garbage.token.value")
	assert.Error(t, err)
}
