package cache

import (
	"context"
	"log"
	"strconv"

	"github.com/trafficden/trafficden/models"
)

// Hierarchy synchronization: parent -> children index sets, nested
// assembly from flat entries, and cascade invalidation. The cache is
// advisory; a reader that cannot fully assemble a subtree falls back to
// the record store, so these operations never need to be atomic with
// the store's own ON DELETE CASCADE.

// CampaignNode is the composite shape served to cache consumers: the
// campaign record plus its streams assembled the same way.
type CampaignNode struct {
	models.Campaign
	Children []StreamNode `json:"children"`
}

// StreamNode is the stream record plus its filters.
type StreamNode struct {
	models.Stream
	Children []models.Filter `json:"children"`
}

func (c *EntityCache) indexChild(ctx context.Context, setKey string, childID uint) {
	member := strconv.FormatUint(uint64(childID), 10)
	if err := c.store.SAdd(ctx, setKey, c.ttl, member); err != nil {
		log.Printf("Cache index add failed for %s: %v", setKey, err)
		cacheErrorsTotal.WithLabelValues("sadd").Inc()
	}
}

func (c *EntityCache) unindexChild(ctx context.Context, setKey string, childID uint) {
	member := strconv.FormatUint(uint64(childID), 10)
	if err := c.store.SRem(ctx, setKey, member); err != nil {
		log.Printf("Cache index remove failed for %s: %v", setKey, err)
		cacheErrorsTotal.WithLabelValues("srem").Inc()
	}
}

func (c *EntityCache) childIDs(ctx context.Context, setKey string) ([]uint, bool) {
	members, present, err := c.store.SMembers(ctx, setKey)
	if err != nil {
		log.Printf("Cache index read failed for %s: %v", setKey, err)
		cacheErrorsTotal.WithLabelValues("smembers").Inc()
		return nil, false
	}
	if !present {
		return nil, false
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

// StreamIDs returns the cached member ids of a campaign's streams set.
// present is false when the set is not cached at all, so callers can
// tell "go query the store" apart from a campaign with zero streams.
func (c *EntityCache) StreamIDs(ctx context.Context, campaignID uint) ([]uint, bool) {
	return c.childIDs(ctx, campaignStreamsKey(campaignID))
}

// FilterIDs returns the cached member ids of a stream's filters set.
func (c *EntityCache) FilterIDs(ctx context.Context, streamID uint) ([]uint, bool) {
	return c.childIDs(ctx, streamFiltersKey(streamID))
}

// StreamWithFilters assembles a stream and its filters from flat cache
// entries. A miss on the stream itself returns nil so the caller falls
// back to the record store for the whole subtree; a filter that has
// expired is simply dropped from the composite.
func (c *EntityCache) StreamWithFilters(ctx context.Context, id uint) *StreamNode {
	stream := c.GetStream(ctx, id)
	if stream == nil {
		return nil
	}

	node := &StreamNode{
		Stream:   *stream,
		Children: []models.Filter{},
	}

	filterIDs, present := c.FilterIDs(ctx, id)
	if !present {
		return node
	}
	for _, fid := range filterIDs {
		if filter := c.GetFilter(ctx, fid); filter != nil {
			node.Children = append(node.Children, *filter)
		}
	}

	return node
}

// CampaignWithStreams assembles a campaign with its streams and their
// filters. All-or-nothing at the root: a campaign miss yields nil and
// the caller rebuilds the entire composite from the record store.
func (c *EntityCache) CampaignWithStreams(ctx context.Context, id uint) *CampaignNode {
	campaign := c.GetCampaign(ctx, id)
	if campaign == nil {
		return nil
	}

	node := &CampaignNode{
		Campaign: *campaign,
		Children: []StreamNode{},
	}

	streamIDs, present := c.StreamIDs(ctx, id)
	if !present {
		return node
	}
	for _, sid := range streamIDs {
		if stream := c.StreamWithFilters(ctx, sid); stream != nil {
			node.Children = append(node.Children, *stream)
		}
	}

	return node
}

// CascadeDeleteStream evicts a stream, all of its filters, the filters
// index set, and the stream's membership in the campaign set. Safe to
// call when nothing is cached.
func (c *EntityCache) CascadeDeleteStream(ctx context.Context, id, campaignID uint) {
	filterIDs, _ := c.FilterIDs(ctx, id)
	for _, fid := range filterIDs {
		c.del(ctx, filterKey(fid))
	}

	c.DeleteStream(ctx, id, campaignID)
	cascadeDeletesTotal.WithLabelValues("stream").Inc()
}

// CascadeDeleteCampaign evicts a campaign and every cached descendant:
// streams, their filters, all index sets, and the code index. Calling
// it twice is a no-op the second time.
func (c *EntityCache) CascadeDeleteCampaign(ctx context.Context, id uint, code string) {
	streamIDs, _ := c.StreamIDs(ctx, id)
	for _, sid := range streamIDs {
		c.CascadeDeleteStream(ctx, sid, id)
	}

	c.del(ctx, campaignStreamsKey(id))
	c.DeleteCampaign(ctx, id, code)
	cascadeDeletesTotal.WithLabelValues("campaign").Inc()
}
