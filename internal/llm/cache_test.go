package llm

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

func newTestCache(t *testing.T, next ports.Completer, opts ...CacheOption) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(next, client, opts...)
}

func TestCache_ReadThrough(t *testing.T) {
	calls := 0
	next := ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		calls++
		return "generated", nil
	})

	hits := 0
	cache := newTestCache(t, next, WithHitCallback(func() { hits++ }))

	req := ports.CompletionRequest{Model: "gemma3", System: "sys", Prompt: "break down the task"}
	ctx := context.Background()

	got, err := cache.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "generated", got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, hits)

	// Second identical request is served from the cache.
	got, err = cache.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "generated", got)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, hits)
}

func TestCache_DistinguishesOptions(t *testing.T) {
	calls := 0
	next := ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		calls++
		return "generated", nil
	})
	cache := newTestCache(t, next)

	ctx := context.Background()
	base := ports.CompletionRequest{Model: "gemma3", Prompt: "p"}

	_, err := cache.Complete(ctx, base)
	require.NoError(t, err)

	warm := base
	warm.Options = map[string]any{"temperature": 0.9}
	_, err = cache.Complete(ctx, warm)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "different options must not share a cache entry")
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	calls := 0
	next := ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		calls++
		if calls == 1 {
			return "", assert.AnError
		}
		return "recovered", nil
	})
	cache := newTestCache(t, next)

	ctx := context.Background()
	req := ports.CompletionRequest{Model: "gemma3", Prompt: "p"}

	_, err := cache.Complete(ctx, req)
	require.Error(t, err)

	got, err := cache.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestCache_TTLExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	next := ports.CompleterFunc(func(ctx context.Context, req ports.CompletionRequest) (string, error) {
		calls++
		return "generated", nil
	})
	cache := NewCache(next, client, WithTTL(time.Minute))

	ctx := context.Background()
	req := ports.CompletionRequest{Model: "gemma3", Prompt: "p"}

	_, err = cache.Complete(ctx, req)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entries must be regenerated")
}
