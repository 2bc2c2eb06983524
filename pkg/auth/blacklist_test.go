package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/leadcrm/pkg/cache"
)

func setupBlacklist(t *testing.T) (*TokenBlacklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewTokenBlacklist(client), mr
}

func TestBlacklist_AddAndCheck(t *testing.T) {
	bl, _ := setupBlacklist(t)
	ctx := context.Background()

	token := "some.jwt.token"
	revoked, err := bl.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Add(ctx, token, time.Hour))

	revoked, err = bl.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other tokens are unaffected.
	revoked, err = bl.IsBlacklisted(ctx, "another.jwt.token")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklist_EntryExpires(t *testing.T) {
	bl, mr := setupBlacklist(t)
	ctx := context.Background()

	token := "short.lived.token"
	require.NoError(t, bl.Add(ctx, token, time.Minute))

	mr.FastForward(2 * time.Minute)

	revoked, err := bl.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked, "revocation entries expire with the token")
}

func TestBlacklist_ValidateJWTIntegration(t *testing.T) {
	bl, _ := setupBlacklist(t)
	ctx := context.Background()

	token, err := GenerateJWT("000000000000000000000001", "a@b.c", "agent", "", "secret", 1)
	require.NoError(t, err)

	_, err = ValidateJWTWithBlacklist(ctx, token, "secret", bl)
	require.NoError(t, err)

	require.NoError(t, bl.Add(ctx, token, time.Hour))
	_, err = ValidateJWTWithBlacklist(ctx, token, "secret", bl)
	assert.Error(t, err)
}
