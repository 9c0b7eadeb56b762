package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/universal-automation-wiki/iterate/internal/adapters/redis"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunRecordStoreContract(t, store)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))

	ctx := context.Background()
	rec := domain.TreeRecord{
		Metadata: domain.Metadata{UUID: "id-1", Task: "Hallucinate Tree"},
		Tree:     domain.Node{Step: "Build a website"},
	}
	require.NoError(t, store.Save(ctx, "hallucinate-tree", "id-1", rec))

	ids, err := store.List(ctx, "hallucinate-tree")
	require.NoError(t, err)
	assert.Contains(t, ids, "id-1")

	mr.FastForward(2 * time.Minute)

	_, err = store.Load(ctx, "hallucinate-tree", "id-1")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}
