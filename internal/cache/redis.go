package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gatta/internal/models"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrMiss is returned when a pot is not cached
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by Set when the pot was written after the
	// generation the caller loaded under
	ErrStale = errors.New("cached pot is stale")
)

// generationTTL outlives any single load by far
const generationTTL = 24 * time.Hour

type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// PotCache keeps normalized pots for a short TTL. Every write to a pot
// invalidates its entry and bumps the pot's generation, so a fill that
// loaded before the write cannot store the old state.
type PotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPotCache(cfg Config) (*PotCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPotCacheWithClient(rdb, cfg.TTL), nil
}

// NewPotCacheWithClient wraps an existing client
func NewPotCacheWithClient(rdb *redis.Client, ttl time.Duration) *PotCache {
	return &PotCache{client: rdb, ttl: ttl}
}

func potKey(potID string) string {
	return "pot:" + potID
}

func generationKey(potID string) string {
	return "pot:" + potID + ":gen"
}

func (c *PotCache) Get(ctx context.Context, potID string) (*models.Pot, error) {
	raw, err := c.client.Get(ctx, potKey(potID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var pot models.Pot
	if err := json.Unmarshal(raw, &pot); err != nil {
		return nil, fmt.Errorf("invalid cached pot: %w", err)
	}
	return &pot, nil
}

// Generation returns the pot's write generation. Read it before loading the
// pot and hand it to Set.
func (c *PotCache) Generation(ctx context.Context, potID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(potID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores pot only while its generation still equals generation
func (c *PotCache) Set(ctx context.Context, pot models.Pot, generation int64) error {
	raw, err := json.Marshal(pot)
	if err != nil {
		return err
	}

	genKey := generationKey(pot.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, potKey(pot.ID), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Invalidate drops the cached pot and bumps its generation in one transaction
func (c *PotCache) Invalidate(ctx context.Context, potID string) error {
	genKey := generationKey(potID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, potKey(potID))
		return nil
	})
	return err
}

func (c *PotCache) Close() error {
	return c.client.Close()
}
