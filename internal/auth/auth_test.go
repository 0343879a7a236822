package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)
	playerID := uuid.New()

	token, err := svc.Mint(playerID, "gregor")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	gotID, gotName, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, playerID, gotID)
	assert.Equal(t, "gregor", gotName)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	minter := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := minter.Mint(uuid.New(), "gregor")
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)
	svc.lifetime = -time.Minute // already expired at mint time

	token, err := svc.Mint(uuid.New(), "gregor")
	require.NoError(t, err)

	_, _, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)
	_, _, err := svc.Verify("not.a.token")
	assert.Error(t, err)
}

func TestJoinCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := GenerateJoinCode()
		require.Len(t, code, JoinCodeLength)
		for _, c := range code {
			assert.Contains(t, JoinCodeChars, string(c))
		}
	}
}

func TestJoinCodeHashVerify(t *testing.T) {
	code := GenerateJoinCode()
	hash, err := HashJoinCode(code)
	require.NoError(t, err)
	require.NotEqual(t, code, hash)

	assert.True(t, VerifyJoinCode(hash, code))
	assert.False(t, VerifyJoinCode(hash, "WRONG2"))
}
