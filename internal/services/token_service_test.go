package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService() *TokenService {
	return NewTokenService("test-secret", time.Hour, 24*time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testTokenService()

	access, refresh, err := svc.GeneratePair(42)
	require.NoError(t, err)
	require.NotEqual(t, access, refresh)

	id, err := svc.VerifyAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	id, err = svc.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenTypeSeparation(t *testing.T) {
	svc := testTokenService()

	access, refresh, err := svc.GeneratePair(7)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = svc.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, -time.Minute)

	access, err := svc.GenerateAccessToken(7)
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)

	refresh, err := svc.GenerateRefreshToken(7)
	require.NoError(t, err)
	_, err = svc.VerifyRefreshToken(refresh)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenMalformed(t *testing.T) {
	svc := testTokenService()

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed)
	}

	// A token signed with a different secret is rejected
	other := NewTokenService("other-secret", time.Hour, time.Hour)
	forged, err := other.GenerateAccessToken(7)
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(forged)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
