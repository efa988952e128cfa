package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"taskboard/internal/config"
	"taskboard/internal/domain"
	"taskboard/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ ports.Persister = (*Client)(nil)

// Client keeps the task collection as one JSON document under Cfg.TasksKey.
type Client struct {
	Cfg config.Redis
	Rdb *redis.Client
}

func New(cfg config.Redis) *Client {
	log.Info().Msgf("connecting to redis at %s", cfg.Addr)
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Client{Cfg: cfg, Rdb: c}
}

func (c *Client) Connect(ctx context.Context) error {
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Ctx(ctx).Info().Str("key", c.Cfg.TasksKey).Msg("connected to redis")
	return nil
}

func (c *Client) Load(ctx context.Context) ([]domain.Task, error) {
	raw, err := c.Rdb.Get(ctx, c.Cfg.TasksKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.Cfg.TasksKey, err)
	}

	var tasks []domain.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Cfg.TasksKey, err)
	}
	return tasks, nil
}

func (c *Client) Save(ctx context.Context, tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return c.Rdb.Set(ctx, c.Cfg.TasksKey, b, 0).Err()
}

func (c *Client) Close() error {
	return c.Rdb.Close()
}
