package cmd

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses a Redis URL into a client. An empty URL disables
// caching and returns nil.
func NewRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to parse redis URL: %w", err))
	}

	return redis.NewClient(opts)
}
