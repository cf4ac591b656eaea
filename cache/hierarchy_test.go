package cache

import (
	"context"
	"testing"

	"github.com/trafficden/trafficden/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCampaignTree(ctx context.Context, ec *EntityCache) {
	ec.SetCampaign(ctx, testCampaign(1, "AB2C7"))
	ec.SetStream(ctx, &models.Stream{ID: 10, CampaignID: 1, Name: "US Desktop", TargetURL: "https://example.com/a", Status: models.CampaignStatusActive, Weight: 30})
	ec.SetStream(ctx, &models.Stream{ID: 11, CampaignID: 1, Name: "Fallback", TargetURL: "https://example.com/b", Status: models.CampaignStatusActive, Weight: 70})
	ec.SetFilter(ctx, &models.Filter{ID: 100, StreamID: 10, Type: models.FilterTypeCountry, Operation: models.FilterOperationEquals, Value: "US"})
}

func TestCampaignWithStreamsAssembly(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()
	seedCampaignTree(ctx, ec)

	node := ec.CampaignWithStreams(ctx, 1)
	require.NotNil(t, node)
	assert.Equal(t, "AB2C7", node.Code)
	require.Len(t, node.Children, 2)

	byID := map[uint]StreamNode{}
	for _, child := range node.Children {
		byID[child.ID] = child
	}

	filtered := byID[10]
	require.Len(t, filtered.Children, 1)
	assert.Equal(t, models.FilterTypeCountry, filtered.Children[0].Type)
	assert.Equal(t, "US", filtered.Children[0].Value)

	// Stream 11 has no filters cached: its set is absent but the
	// composite still reports it with empty children.
	assert.Empty(t, byID[11].Children)
}

func TestCampaignWithStreamsRootMiss(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	// Children alone do not make a composite
	ec.SetStream(ctx, &models.Stream{ID: 10, CampaignID: 1})

	assert.Nil(t, ec.CampaignWithStreams(ctx, 1))
}

func TestCampaignWithStreamsDropsExpiredChild(t *testing.T) {
	ec, store := newTestCache(t)
	ctx := context.Background()
	seedCampaignTree(ctx, ec)

	// Simulate TTL expiry of one stream entry; its set membership remains
	require.NoError(t, store.Del(ctx, streamKey(11)))

	node := ec.CampaignWithStreams(ctx, 1)
	require.NotNil(t, node)
	require.Len(t, node.Children, 1)
	assert.Equal(t, uint(10), node.Children[0].ID)
}

func TestStreamWithFiltersAbsentSetMeansEmpty(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()

	ec.SetStream(ctx, &models.Stream{ID: 20, CampaignID: 2, Name: "All traffic"})

	node := ec.StreamWithFilters(ctx, 20)
	require.NotNil(t, node)
	assert.NotNil(t, node.Children)
	assert.Empty(t, node.Children)
}

func TestCascadeDeleteCampaign(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()
	seedCampaignTree(ctx, ec)

	ec.CascadeDeleteCampaign(ctx, 1, "AB2C7")

	assert.Nil(t, ec.GetCampaign(ctx, 1))
	assert.Nil(t, ec.GetCampaignByCode(ctx, "AB2C7"))
	assert.Nil(t, ec.GetStream(ctx, 10))
	assert.Nil(t, ec.GetStream(ctx, 11))
	assert.Nil(t, ec.GetFilter(ctx, 100))

	_, present := ec.StreamIDs(ctx, 1)
	assert.False(t, present)
	_, present = ec.FilterIDs(ctx, 10)
	assert.False(t, present)
}

func TestCascadeDeleteCampaignIdempotent(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()
	seedCampaignTree(ctx, ec)

	ec.CascadeDeleteCampaign(ctx, 1, "AB2C7")
	// Second pass over an already-evicted tree must not fail
	ec.CascadeDeleteCampaign(ctx, 1, "AB2C7")

	assert.Nil(t, ec.GetCampaign(ctx, 1))
}

func TestCascadeDeleteStream(t *testing.T) {
	ec, _ := newTestCache(t)
	ctx := context.Background()
	seedCampaignTree(ctx, ec)

	ec.CascadeDeleteStream(ctx, 10, 1)

	assert.Nil(t, ec.GetStream(ctx, 10))
	assert.Nil(t, ec.GetFilter(ctx, 100))
	_, present := ec.FilterIDs(ctx, 10)
	assert.False(t, present)

	// Sibling stream and the campaign itself are untouched
	assert.NotNil(t, ec.GetStream(ctx, 11))
	assert.NotNil(t, ec.GetCampaign(ctx, 1))

	ids, present := ec.StreamIDs(ctx, 1)
	require.True(t, present)
	assert.Equal(t, []uint{11}, ids)
}
