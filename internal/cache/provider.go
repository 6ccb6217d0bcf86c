// Package cache fronts the analysis-result cache behind a small provider
// interface so the service can run with or without caching.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss signals that a key holds no live entry.
var ErrCacheMiss = errors.New("cache miss")

// Provider stores serialized analysis documents under string keys. A ttl of
// zero or less means no expiry.
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
	Close() error
}

// NoopProvider satisfies Provider without retaining anything; every Get is a
// miss. It stands in when caching is disabled.
type NoopProvider struct{}

func (NoopProvider) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }

func (NoopProvider) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopProvider) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return true, nil
}

func (NoopProvider) Del(context.Context, string) error { return nil }

func (NoopProvider) Close() error { return nil }
