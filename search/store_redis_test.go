package search

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, 30*time.Minute, 15*time.Second), mr
}

func TestRedisStoreGenerations(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	current, err := store.CurrentGeneration(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(0), current)

	gen, err := store.NextGeneration(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	gen, err = store.NextGeneration(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)

	current, err = store.CurrentGeneration(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)
	assert.Equal(t, 30*time.Minute, mr.TTL("search:sid:gen"))
}

func TestRedisStoreSaveLoad(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "sid", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sess := &Session{
		Query:      Query{Text: "civic", Filter: "product_price:>=1000", Page: 1},
		Key:        "civic|product_price:>=1000|relevance",
		Generation: 1,
		NextPage:   2,
		Seen:       []string{"a", "b"},
		Total:      45,
		Status:     StatusReady,
	}
	require.NoError(t, store.Save(ctx, "sid", sess))

	loaded, err := store.Load(ctx, "sid", 1)
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)

	mr.FastForward(31 * time.Minute)
	_, err = store.Load(ctx, "sid", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreLock(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "sid", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(ctx, "sid", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Acquire(ctx, "sid", 2)
	require.NoError(t, err)
	assert.True(t, ok, "locks are per generation")

	require.NoError(t, store.Release(ctx, "sid", 1))
	ok, err = store.Acquire(ctx, "sid", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(16 * time.Second)
	ok, err = store.Acquire(ctx, "sid", 2)
	require.NoError(t, err)
	assert.True(t, ok, "abandoned lock expires")
}

func TestStreamOverRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	f := &fakeSearcher{pages: map[int]Page{
		1: {Hits: hits("a", "b"), Total: 3},
		2: {Hits: hits("b", "c"), Total: 3, LastPage: true},
	}}
	stream := NewStream(f, store)
	ctx := context.Background()

	first, err := stream.Start(ctx, "sid", civic)
	require.NoError(t, err)

	more, err := stream.RequestMore(ctx, "sid", first.Session.Generation)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(more.Hits))
	assert.Equal(t, StatusExhausted, more.Session.Status)
}
