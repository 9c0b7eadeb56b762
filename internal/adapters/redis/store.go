// Package redis implements ports.RecordStore on Redis, for deployments
// where several workers share one record corpus.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/universal-automation-wiki/iterate/pkg/domain"
)

// Store keeps each record as a JSON string key and maintains a per-stage
// ZSET index so List does not need a key scan.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for records. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for records.
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
	store := &Store{
		client: client,
		prefix: "iterate:record:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(stage, id string) string {
	return s.prefix + stage + ":" + id
}

func (s *Store) indexKey(stage string) string {
	return s.prefix + stage + ":index"
}

// Save persists the record and registers it in the stage index.
func (s *Store) Save(ctx context.Context, stage, id string, record any) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Index score mirrors the key TTL so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(stage, id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(stage), backend.Z{Score: score, Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a record's raw JSON.
func (s *Store) Load(ctx context.Context, stage, id string) (json.RawMessage, error) {
	val, err := s.client.Get(ctx, s.key(stage, id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return json.RawMessage(val), nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, stage, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(stage, id))
	pipe.ZRem(ctx, s.indexKey(stage), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the ids registered under a stage, pruning entries whose
// keys have expired.
func (s *Store) List(ctx context.Context, stage string) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(stage), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired records: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(stage), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
