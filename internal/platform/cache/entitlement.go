package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/config"
)

const (
	defaultTTL       = 5 * time.Minute
	defaultKeyPrefix = "financeplus:entitlement:"
	// generationTTL bounds how long an invalidation generation outlives the
	// last write for a user.
	generationTTL = 24 * time.Hour
)

// EntitlementCache stores the subscription governing each user's access as
// JSON under prefix+userID. Each user also has a generation counter under
// prefix+"gen:"+userID that Invalidate bumps; Set only fills an entry while
// the generation read by Get is unchanged. A nil client turns every call
// into a no-op miss.
type EntitlementCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewEntitlementCache(client *redis.Client, cfg *config.Config) *EntitlementCache {
	c := &EntitlementCache{client: client, ttl: defaultTTL, prefix: defaultKeyPrefix}
	if cfg != nil {
		if cfg.Redis.TTL > 0 {
			c.ttl = cfg.Redis.TTL
		}
		if cfg.Redis.KeyPrefix != "" {
			c.prefix = cfg.Redis.KeyPrefix
		}
	}
	return c
}

// Enabled reports whether a redis client backs the cache.
func (c *EntitlementCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *EntitlementCache) Key(userID string) string {
	return c.prefix + userID
}

func (c *EntitlementCache) generationKey(userID string) string {
	return c.prefix + "gen:" + userID
}

// Get returns the cached entry, nil on a miss, and the user's current generation.
func (c *EntitlementCache) Get(ctx context.Context, userID string) (*models.Subscription, int64, error) {
	if !c.Enabled() {
		return nil, 0, nil
	}
	vals, err := c.client.MGet(ctx, c.Key(userID), c.generationKey(userID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read entitlement cache: %w", err)
	}
	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}
	var sub models.Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, gen, fmt.Errorf("failed to decode cached entitlements: %w", err)
	}
	return &sub, gen, nil
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entitlement cache generation %q: %w", s, err)
	}
	return gen, nil
}

// Set stores sub when the user's generation still equals generation. A fill
// that lost the race with Invalidate is dropped silently.
func (c *EntitlementCache) Set(ctx context.Context, userID string, generation int64, sub *models.Subscription) error {
	if !c.Enabled() || sub == nil {
		return nil
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode entitlements: %w", err)
	}
	genKey := c.generationKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.Key(userID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("failed to write entitlement cache: %w", err)
	}
}

var errStaleGeneration = errors.New("entitlement cache generation changed")

// Invalidate drops the users' entries and bumps their generations.
func (c *EntitlementCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if !c.Enabled() {
		return nil
	}
	ids := lo.Uniq(lo.Compact(userIDs))
	if len(ids) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, id := range ids {
			p.Del(ctx, c.Key(id))
			p.Incr(ctx, c.generationKey(id))
			p.Expire(ctx, c.generationKey(id), generationTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate entitlement cache: %w", err)
	}
	return nil
}
