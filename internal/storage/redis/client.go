package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/storage"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	cli        *redis.Client
	sessionTTL time.Duration
	codeTTL    time.Duration
}

func New(ctx context.Context, url string, sessionTTL, codeTTL time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli, sessionTTL: sessionTTL, codeTTL: codeTTL}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func sessionKey(id string) string { return "session:" + id }

// SaveSession пишет сессию JSON-ом под ключ session:{id} с TTL записи.
func (c *Client) SaveSession(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return c.cli.Set(ctx, sessionKey(s.ID), data, c.sessionTTL).Err()
}

func (c *Client) GetSession(ctx context.Context, id string) (*model.Session, error) {
	data, err := c.cli.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("redis decode session: %w", err)
	}
	return &s, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.cli.Del(ctx, sessionKey(id)).Err()
}

// ClaimCode — SET NX: из нескольких реплик веб-фронта код заявит только одна.
func (c *Client) ClaimCode(ctx context.Context, code string) (bool, error) {
	ok, err := c.cli.SetNX(ctx, storage.CodeKey(code), 1, c.codeTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis claim code: %w", err)
	}
	return ok, nil
}
