package kv

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Supported driver names.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config selects and parameterizes a store client.
type Config struct {
	// Driver is "redis" or "memory".
	Driver string `yaml:"driver" json:"driver"`

	// Addr is the host:port of the Redis server (redis driver only).
	Addr string `yaml:"addr" json:"addr"`

	// Password is the optional server password (redis driver only).
	Password string `yaml:"password" json:"password"`

	// DB is the logical database number (redis driver only).
	DB int `yaml:"db" json:"db"`
}

// NewClient creates a Client implementation based on the configured driver.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryClient(), nil
	case DriverRedis:
		if cfg.Addr == "" {
			return nil, fmt.Errorf("redis driver requires addr to be set")
		}
		return NewRedisClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}), nil
	default:
		return nil, fmt.Errorf("unknown kv driver: %q", cfg.Driver)
	}
}
