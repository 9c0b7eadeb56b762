package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// Cache is a read-through completion cache backed by Redis. Identical
// requests (model, messages, options) return the stored response without
// hitting the model, which makes flow re-runs cheap.
type Cache struct {
	next   ports.Completer
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	onHit  func()
}

type CacheOption func(*Cache)

// WithTTL sets the expiration for cached responses. Zero means no expiry.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

// WithPrefix sets the key prefix for cached responses.
func WithPrefix(prefix string) CacheOption {
	return func(c *Cache) { c.prefix = prefix }
}

// WithHitCallback registers a callback invoked on every cache hit.
func WithHitCallback(fn func()) CacheOption {
	return func(c *Cache) { c.onHit = fn }
}

// WithLogger sets the cache logger.
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = logger }
}

// NewCache wraps a completer with a Redis response cache.
func NewCache(next ports.Completer, client *backend.Client, opts ...CacheOption) *Cache {
	c := &Cache{
		next:   next,
		client: client,
		prefix: "iterate:completion:",
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(req ports.CompletionRequest) (string, error) {
	// json.Marshal sorts map keys, so identical options hash identically.
	payload, err := json.Marshal(struct {
		Model   string         `json:"model"`
		System  string         `json:"system"`
		Prompt  string         `json:"prompt"`
		Options map[string]any `json:"options,omitempty"`
	}{req.Model, req.System, req.Prompt, req.Options})
	if err != nil {
		return "", fmt.Errorf("hash completion request: %w", err)
	}
	sum := sha256.Sum256(payload)
	return c.prefix + hex.EncodeToString(sum[:]), nil
}

// Complete returns a cached response when available, otherwise delegates
// and stores the result. Cache failures degrade to a direct call.
func (c *Cache) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	key, err := c.key(req)
	if err != nil {
		return c.next.Complete(ctx, req)
	}

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if c.onHit != nil {
			c.onHit()
		}
		return val, nil
	}
	if err != backend.Nil {
		c.logger.Warn("completion cache read failed", "error", err)
	}

	content, err := c.next.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, content, c.ttl).Err(); err != nil {
		c.logger.Warn("completion cache write failed", "error", err)
	}
	return content, nil
}
