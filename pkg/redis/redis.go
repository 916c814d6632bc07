package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Enabled        bool   `default:"true"`
	URL            string `split_words:"true"`
	Namespace      string `default:"chatgpt"`
	ReadTimeout    int    `split_words:"true" default:"3"`
	WriteTimeout   int    `split_words:"true" default:"3"`
	DialTimeout    int    `split_words:"true" default:"5"`
	InteractionTTL string `split_words:"true" default:"0"`
}

func (r *Config) New(ctx context.Context) (*redis.Client, error) {
	if r.URL == "" {
		return nil, errors.New("REDIS_URL is required when redis is enabled")
	}

	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// TTL parses InteractionTTL; zero means stored interactions never expire.
func (r *Config) TTL() (time.Duration, error) {
	if r.InteractionTTL == "" {
		return 0, nil
	}
	return time.ParseDuration(r.InteractionTTL)
}
