package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/fights/config"
)

// Mirror receives the latest view of every session after it changes
type Mirror interface {
	Publish(ctx context.Context, view SessionView) error
	Remove(ctx context.Context, id string) error
}

type nopMirror struct{}

func (nopMirror) Publish(context.Context, SessionView) error { return nil }
func (nopMirror) Remove(context.Context, string) error       { return nil }

// RedisMirror stores each session view as json under prefix+id,
// expiring after ttl without updates.
type RedisMirror struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Mirror = &RedisMirror{}

func NewRedisMirror(cfg config.RedisConfig) *RedisMirror {
	return &RedisMirror{
		client: redis.NewClient(&redis.Options{
			Addr:        cfg.Addr,
			Password:    cfg.Password,
			DB:          cfg.DB,
			DialTimeout: 500 * time.Millisecond,
		}),
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (r *RedisMirror) Key(id string) string {
	return r.prefix + id
}

func (r *RedisMirror) Publish(ctx context.Context, view SessionView) error {
	b, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.Key(view.ID), b, r.ttl).Err()
}

func (r *RedisMirror) Remove(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.Key(id)).Err()
}

// Load reads back a mirrored view
func (r *RedisMirror) Load(ctx context.Context, id string) (SessionView, error) {
	var view SessionView
	b, err := r.client.Get(ctx, r.Key(id)).Bytes()
	if err != nil {
		return view, err
	}
	err = json.Unmarshal(b, &view)
	return view, err
}

func (r *RedisMirror) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisMirror) Close() error {
	return r.client.Close()
}
