package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trafficden/trafficden/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenStore fails every operation to exercise the fail-open paths.
type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errStoreDown
}

func (brokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errStoreDown
}

func (brokenStore) Del(ctx context.Context, keys ...string) error { return errStoreDown }

func (brokenStore) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	return errStoreDown
}

func (brokenStore) SRem(ctx context.Context, key, member string) error { return errStoreDown }

func (brokenStore) SMembers(ctx context.Context, key string) ([]string, bool, error) {
	return nil, false, errStoreDown
}

func (brokenStore) Ping(ctx context.Context) error { return errStoreDown }
func (brokenStore) Close() error                   { return nil }

func newTestCache(t *testing.T) (*EntityCache, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return NewEntityCache(store, time.Minute), store
}

func testCampaign(id uint, code string) *models.Campaign {
	return &models.Campaign{
		ID:       id,
		Name:     "Summer Sale",
		Code:     code,
		Status:   models.CampaignStatusActive,
		Currency: models.CurrencyUSD,
	}
}

func TestEntityCacheCampaignRoundTrip(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	assert.Nil(t, ec.GetCampaign(ctx, 1))

	ec.SetCampaign(ctx, testCampaign(1, "AB2C7"))

	got := ec.GetCampaign(ctx, 1)
	require.NotNil(t, got)
	assert.Equal(t, uint(1), got.ID)
	assert.Equal(t, "AB2C7", got.Code)
	assert.Equal(t, models.CampaignStatusActive, got.Status)
}

func TestEntityCacheCampaignByCode(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	assert.Nil(t, ec.GetCampaignByCode(ctx, "AB2C7"))

	ec.SetCampaign(ctx, testCampaign(7, "AB2C7"))

	got := ec.GetCampaignByCode(ctx, "AB2C7")
	require.NotNil(t, got)
	assert.Equal(t, uint(7), got.ID)
}

func TestEntityCacheDeleteCampaignDropsCodeIndex(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	ec.SetCampaign(ctx, testCampaign(7, "AB2C7"))
	ec.DeleteCampaign(ctx, 7, "AB2C7")

	assert.Nil(t, ec.GetCampaign(ctx, 7))
	assert.Nil(t, ec.GetCampaignByCode(ctx, "AB2C7"))
}

func TestEntityCacheCorruptEntryEvicted(t *testing.T) {
	ec, store := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, campaignKey(3), "{not json", time.Minute))

	assert.Nil(t, ec.GetCampaign(ctx, 3))

	// The corrupt payload is gone so the next read is a clean miss
	_, found, err := store.Get(ctx, campaignKey(3))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEntityCacheStreamIndexedUnderCampaign(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	ec.SetStream(ctx, &models.Stream{ID: 10, CampaignID: 1, Name: "US Desktop", TargetURL: "https://example.com/a", Weight: 30})

	ids, present := ec.StreamIDs(ctx, 1)
	require.True(t, present)
	assert.Equal(t, []uint{10}, ids)

	ec.DeleteStream(ctx, 10, 1)

	assert.Nil(t, ec.GetStream(ctx, 10))
	_, present = ec.StreamIDs(ctx, 1)
	assert.False(t, present)
}

func TestEntityCacheTrafficSourceRoundTrip(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	source := &models.TrafficSource{
		ID:          4,
		Name:        "PropellerAds",
		QueryParams: models.QueryParams{"clickid": "{clickid}"},
		Custom:      false,
	}
	ec.SetTrafficSource(ctx, source)

	got := ec.GetTrafficSource(ctx, 4)
	require.NotNil(t, got)
	assert.Equal(t, "PropellerAds", got.Name)
	assert.Equal(t, "{clickid}", got.QueryParams["clickid"])

	ec.DeleteTrafficSource(ctx, 4)
	assert.Nil(t, ec.GetTrafficSource(ctx, 4))
}

func TestEntityCacheFailOpen(t *testing.T) {
	ec := NewEntityCache(brokenStore{}, time.Minute)
	ctx := context.Background()

	// Every accessor degrades to a miss or no-op instead of failing
	assert.Nil(t, ec.GetCampaign(ctx, 1))
	assert.Nil(t, ec.GetCampaignByCode(ctx, "AB2C7"))
	assert.Nil(t, ec.GetStream(ctx, 1))
	assert.Nil(t, ec.GetFilter(ctx, 1))
	assert.Nil(t, ec.GetTrafficSource(ctx, 1))

	ec.SetCampaign(ctx, testCampaign(1, "AB2C7"))
	ec.SetStream(ctx, &models.Stream{ID: 1, CampaignID: 1})
	ec.SetFilter(ctx, &models.Filter{ID: 1, StreamID: 1})
	ec.DeleteCampaign(ctx, 1, "AB2C7")
	ec.CascadeDeleteCampaign(ctx, 1, "AB2C7")

	assert.Nil(t, ec.CampaignWithStreams(ctx, 1))
	assert.Nil(t, ec.StreamWithFilters(ctx, 1))
}

func TestEntityCacheDefaultTTL(t *testing.T) {
	ec := NewEntityCache(brokenStore{}, 0)
	assert.Equal(t, DefaultTTL, ec.TTL())

	ec = NewEntityCache(brokenStore{}, 5*time.Minute)
	assert.Equal(t, 5*time.Minute, ec.TTL())
}
