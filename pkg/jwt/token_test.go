package jwtPkg

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	token, exp, err := Sign(map[string]interface{}{"sub": "kiosk-1"}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	parsed, err := Verify(token, AccessTokenSecret)
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "kiosk-1", claims["sub"])

	t.Setenv(AccessTokenSecret, "other-secret")
	_, err = Verify(token, AccessTokenSecret)
	assert.Error(t, err)
}

func TestSignExpired(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	token, _, err := Sign(map[string]interface{}{"sub": "kiosk-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = Verify(token, AccessTokenSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSignWithoutSecret(t *testing.T) {
	t.Setenv(AccessTokenSecret, "")
	_, _, err := Sign(nil, time.Hour)
	assert.Error(t, err)
}
