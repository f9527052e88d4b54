// AngelaMos | 2026
// denylist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccessTokenDenylist records access tokens revoked before their expiry,
// keyed by JTI. Refresh tokens live in postgres and are revoked there,
// this list only has to carry an access token through its last minutes.
type AccessTokenDenylist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// RedisDenylist stores revoked JTIs under blacklist:<jti>. Each entry
// expires together with the token it voids, so the list never needs
// sweeping.
type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

var _ AccessTokenDenylist = (*RedisDenylist)(nil)

func (d *RedisDenylist) Revoke(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, denylistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist token: %w", err)
	}

	return nil
}

func (d *RedisDenylist) Contains(
	ctx context.Context,
	jti string,
) (bool, error) {
	exists, err := d.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check denylist: %w", err)
	}

	return exists > 0, nil
}

func denylistKey(jti string) string {
	return "blacklist:" + jti
}
