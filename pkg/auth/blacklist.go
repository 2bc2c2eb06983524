package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jordanlanch/leadcrm/pkg/cache"
)

// TokenBlacklist holds revoked JWT tokens in Redis until they would have
// expired anyway; Redis TTLs handle the cleanup.
type TokenBlacklist struct {
	cache *cache.Client
}

// NewTokenBlacklist creates a new token blacklist.
func NewTokenBlacklist(cache *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cache}
}

// Add revokes a token for the given duration.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiration time.Duration) error {
	// Only the hash is stored, never the raw token.
	key := fmt.Sprintf("jwt:blacklist:%s", b.hashToken(token))
	return b.cache.Set(ctx, key, "revoked", expiration)
}

// IsBlacklisted checks whether a token has been revoked.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("jwt:blacklist:%s", b.hashToken(token))
	return b.cache.Exists(ctx, key)
}

func (b *TokenBlacklist) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
