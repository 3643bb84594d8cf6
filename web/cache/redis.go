// Package cache provides the Redis connection and the Redis-backed session
// store. An embedded miniredis instance stands in when no address is configured.
package cache

import (
	"context"
	"fmt"

	"github.com/ehb/ragchat/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis owns a client and, in embedded mode, the server behind it.
type Redis struct {
	client *redis.Client
	mini   *miniredis.Miniredis
}

// Open connects to addr, or starts an embedded server when addr is empty.
func Open(ctx context.Context, addr string) (*Redis, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded Redis: %w", err)
		}
		logger.Info("Embedded Redis started on", mr.Addr())
		return &Redis{
			client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			mini:   mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	logger.Info("Connected to external Redis at", addr)
	return &Redis{client: client}, nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) IsEmbedded() bool {
	return r.mini != nil
}

// Close closes the client and stops the embedded server if running.
func (r *Redis) Close() error {
	err := r.client.Close()
	if r.mini != nil {
		r.mini.Close()
	}
	return err
}
