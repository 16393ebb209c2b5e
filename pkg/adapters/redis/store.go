// Package redis persists sessions in Redis and provides the distributed
// locker for multi-replica deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.Store on Redis. State tokens are stored as plain
// strings, data maps as JSON, under independent keys so their lifecycles stay
// separate.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets an expiration for session keys. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "arbor:session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) stateKey(key ports.Key) string {
	return s.prefix + "state:" + key.String()
}

func (s *Store) dataKey(key ports.Key) string {
	return s.prefix + "data:" + key.String()
}

func (s *Store) GetState(ctx context.Context, key ports.Key) (string, error) {
	token, err := s.client.Get(ctx, s.stateKey(key)).Result()
	if err == backend.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get state %s: %w", key, err)
	}
	return token, nil
}

func (s *Store) SetState(ctx context.Context, key ports.Key, token string) error {
	if err := s.client.Set(ctx, s.stateKey(key), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set state %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteState(ctx context.Context, key ports.Key) error {
	if err := s.client.Del(ctx, s.stateKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete state %s: %w", key, err)
	}
	return nil
}

func (s *Store) GetData(ctx context.Context, key ports.Key) (flow.Data, error) {
	raw, err := s.client.Get(ctx, s.dataKey(key)).Result()
	if err == backend.Nil {
		return flow.Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get data %s: %w", key, err)
	}
	var data flow.Data
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("redis decode data %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) SetData(ctx context.Context, key ports.Key, data flow.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("redis encode data %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.dataKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set data %s: %w", key, err)
	}
	return nil
}

func (s *Store) DeleteData(ctx context.Context, key ports.Key) error {
	if err := s.client.Del(ctx, s.dataKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete data %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
