package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", value)
}

func TestMemoryStoreEntryExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreEntryExpiresDespiteReads(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 60*time.Millisecond))

	// Repeated reads must not refresh the entry's TTL
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		_, _, err := store.Get(ctx, "k")
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "entry outlived its TTL under continuous reads")
}

func TestMemoryStoreDel(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1", 0))
	require.NoError(t, store.Set(ctx, "b", "2", 0))
	require.NoError(t, store.SAdd(ctx, "a", time.Minute, "m"))

	require.NoError(t, store.Del(ctx, "a", "b"))

	_, found, _ := store.Get(ctx, "a")
	assert.False(t, found)
	_, found, _ = store.Get(ctx, "b")
	assert.False(t, found)
	_, present, _ := store.SMembers(ctx, "a")
	assert.False(t, present)
}

func TestMemoryStoreSets(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	// An absent set reads as not present
	members, present, err := store.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.False(t, present)
	assert.Empty(t, members)

	require.NoError(t, store.SAdd(ctx, "s", time.Minute, "10", "11"))
	require.NoError(t, store.SAdd(ctx, "s", time.Minute, "12"))

	members, present, err = store.SMembers(ctx, "s")
	require.NoError(t, err)
	require.True(t, present)
	assert.ElementsMatch(t, []string{"10", "11", "12"}, members)

	// Removing the last member removes the set itself
	require.NoError(t, store.SRem(ctx, "s", "10"))
	require.NoError(t, store.SRem(ctx, "s", "11"))
	require.NoError(t, store.SRem(ctx, "s", "12"))

	_, present, err = store.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestMemoryStoreSetExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.SAdd(ctx, "s", 10*time.Millisecond, "10"))
	time.Sleep(30 * time.Millisecond)

	_, present, err := store.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.False(t, present)
}
