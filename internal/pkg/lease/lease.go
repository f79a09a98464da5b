package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	// Addr of the redis server. Empty disables leasing.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"lease_ttl" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		TTL: 5 * time.Minute,
	}
}

// Leaser grants a named lease to at most one holder until it expires.
type Leaser interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Close() error
}

type RedisLease struct {
	DB    *redis.Client
	owner string
}

func NewRedisLease(db *redis.Client) *RedisLease {
	return &RedisLease{DB: db, owner: uuid.NewString()}
}

func Connect(ctx context.Context, cfg Config) (*RedisLease, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cant connect to redis: %w", err)
	}

	return NewRedisLease(client), nil
}

func (l *RedisLease) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.DB.SetNX(ctx, key, l.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cant acquire lease %v: %w", key, err)
	}

	return ok, nil
}

func (l *RedisLease) Close() error {
	if err := l.DB.Close(); err != nil {
		return fmt.Errorf("cant close redis: %w", err)
	}

	return nil
}
