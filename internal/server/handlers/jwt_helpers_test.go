package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	cfg := testJWTConfig()

	token, expiresIn, err := GenerateAccessToken(cfg, "user123", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(cfg.AccessTokenTTL.Seconds()), expiresIn)

	claims, err := ValidateAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "user123", claims.UserID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	// Токен с истекшим сроком не проходит даже с верной подписью
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute

	token, _, err := GenerateAccessToken(cfg, "user123", "alice")
	require.NoError(t, err)

	_, err = ValidateAccessToken(cfg, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestValidateAccessToken_Tampered(t *testing.T) {
	cfg := testJWTConfig()

	token, _, err := GenerateAccessToken(cfg, "user123", "alice")
	require.NoError(t, err)

	// Портим по одному символу в каждой части токена
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		flipped := byte('A')
		if token[i] == 'A' {
			flipped = 'B'
		}
		tampered := token[:i] + string(flipped) + token[i+1:]
		if tampered == token {
			continue
		}

		_, err := ValidateAccessToken(cfg, tampered)
		assert.Error(t, err, "tampered token at byte %d must fail validation", i)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()

	token, _, err := GenerateAccessToken(cfg, "user123", "alice")
	require.NoError(t, err)

	otherCfg := cfg
	otherCfg.Secret = []byte("another-secret")

	_, err = ValidateAccessToken(otherCfg, token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenInvalid))
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	cfg := testJWTConfig()

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := ValidateAccessToken(cfg, token)
		assert.Error(t, err, "token %q must fail validation", token)
	}
}

func TestValidateAccessToken_AlgorithmConfusion(t *testing.T) {
	cfg := testJWTConfig()

	// Токен с alg=none отклоняется до проверки claims
	noneToken := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJzdWIiOiJhbGljZSJ9."
	_, err := ValidateAccessToken(cfg, noneToken)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "token") || errors.Is(err, ErrTokenInvalid))
}
