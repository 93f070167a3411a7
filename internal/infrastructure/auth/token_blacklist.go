package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire
type TokenBlacklist interface {
	// AddToBlacklist revokes a token by JTI for ttl (its remaining lifetime)
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	// InvalidateUserTokens revokes every token of the user issued before now
	InvalidateUserTokens(ctx context.Context, userID uint, ttl time.Duration) error
	IsUserTokenInvalidated(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error)
}

// issuedBefore compares at second precision, the granularity of JWT iat.
// A token issued in the same second as the invalidation stays valid.
func issuedBefore(issuedAt time.Time, invalidatedAt int64) bool {
	return issuedAt.Unix() < invalidatedAt
}

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenBlacklist wraps a shared Redis client
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: "doorsets:token:blacklist:",
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID uint) string {
	return b.keyPrefix + "user:" + strconv.FormatUint(uint64(userID), 10)
}

// AddToBlacklist adds a token's JTI to the blacklist
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks if a token's JTI is in the blacklist
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// InvalidateUserTokens stores the invalidation timestamp for the user
func (b *RedisTokenBlacklist) InvalidateUserTokens(ctx context.Context, userID uint, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

// IsUserTokenInvalidated checks the token against the user's invalidation timestamp
func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID uint, tokenIssuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return issuedBefore(tokenIssuedAt, invalidatedAt), nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory. Used when Redis
// is not configured and in tests.
type InMemoryTokenBlacklist struct {
	mu            sync.Mutex
	jtis          map[string]time.Time // jti -> expiry
	invalidations map[uint]int64       // user -> unix seconds
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtis:          make(map[string]time.Time),
		invalidations: make(map[uint]int64),
	}
}

// AddToBlacklist adds a token's JTI to the in-memory blacklist
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = time.Now().Add(ttl)
	return nil
}

// IsBlacklisted checks if a token's JTI is blacklisted and not expired
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.jtis[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.jtis, jti)
		return false, nil
	}
	return true, nil
}

// InvalidateUserTokens records the invalidation time for the user
func (b *InMemoryTokenBlacklist) InvalidateUserTokens(_ context.Context, userID uint, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidations[userID] = time.Now().Unix()
	return nil
}

// IsUserTokenInvalidated checks the token against the user's invalidation time
func (b *InMemoryTokenBlacklist) IsUserTokenInvalidated(_ context.Context, userID uint, tokenIssuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	at, ok := b.invalidations[userID]
	if !ok {
		return false, nil
	}
	return issuedBefore(tokenIssuedAt, at), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
