package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/yourusername/quizroom-api/internal/config"
)

// pingTimeout — время ожидания ответа Redis при старте.
const pingTimeout = 5 * time.Second

// NewUniversalRedisClient подключается к Redis по настройкам из конфигурации
// и проверяет соединение. Режим (single, sentinel, cluster) выбирается
// полем Mode; пустое значение трактуется как single.
func NewUniversalRedisClient(cfg config.RedisConfig) (redis.UniversalClient, error) {
	options, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping (mode=%s, addrs=%v): %w", cfg.Mode, options.Addrs, err)
	}
	return client, nil
}

func buildOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	addrs := cfg.Addrs
	if len(addrs) == 0 && cfg.Addr != "" {
		addrs = []string{cfg.Addr}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis config: addrs or addr is required")
	}

	options := &redis.UniversalOptions{
		Addrs:           addrs,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoff) * time.Millisecond,
	}

	switch cfg.Mode {
	case "", "single", "cluster":
		// NewUniversalClient сам различает single и cluster по набору адресов
	case "sentinel":
		if cfg.MasterName == "" {
			return nil, fmt.Errorf("redis config: sentinel mode requires masterName")
		}
		options.MasterName = cfg.MasterName
	default:
		return nil, fmt.Errorf("redis config: unknown mode %q", cfg.Mode)
	}

	return options, nil
}
