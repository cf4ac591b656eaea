package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/trafficden/trafficden/models"
)

// EntityCache provides per-entity cache accessors over a Store. Reads
// never consult the record store; that fallback is the caller's job.
// Every Store failure is recovered locally (logged, counted, treated as
// a miss or no-op) so a degraded cache never fails a record store
// operation.
type EntityCache struct {
	store Store
	ttl   time.Duration
}

// DefaultTTL is applied to entity keys and index sets when the
// configured TTL is zero.
const DefaultTTL = time.Hour

// NewEntityCache creates the cache layer with the given entry TTL.
func NewEntityCache(store Store, ttl time.Duration) *EntityCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EntityCache{
		store: store,
		ttl:   ttl,
	}
}

// TTL returns the configured entry TTL.
func (c *EntityCache) TTL() time.Duration {
	return c.ttl
}

func (c *EntityCache) get(ctx context.Context, entity, key string, out any) bool {
	value, found, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("Cache get failed for %s: %v", key, err)
		cacheErrorsTotal.WithLabelValues("get").Inc()
		return false
	}
	if !found {
		cacheMissesTotal.WithLabelValues(entity).Inc()
		return false
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		// A corrupt entry is as good as a miss; drop it so the next
		// read repopulates from the record store.
		log.Printf("Cache entry at %s is corrupt, evicting: %v", key, err)
		_ = c.store.Del(ctx, key)
		cacheMissesTotal.WithLabelValues(entity).Inc()
		return false
	}

	cacheHitsTotal.WithLabelValues(entity).Inc()
	return true
}

func (c *EntityCache) set(ctx context.Context, key string, entity any) bool {
	payload, err := json.Marshal(entity)
	if err != nil {
		log.Printf("Cache marshal failed for %s: %v", key, err)
		return false
	}

	if err := c.store.Set(ctx, key, string(payload), c.ttl); err != nil {
		log.Printf("Cache set failed for %s: %v", key, err)
		cacheErrorsTotal.WithLabelValues("set").Inc()
		return false
	}
	return true
}

func (c *EntityCache) del(ctx context.Context, keys ...string) {
	if err := c.store.Del(ctx, keys...); err != nil {
		log.Printf("Cache delete failed for %v: %v", keys, err)
		cacheErrorsTotal.WithLabelValues("del").Inc()
	}
}

// Campaign accessors

// GetCampaign returns the cached campaign or nil on miss.
func (c *EntityCache) GetCampaign(ctx context.Context, id uint) *models.Campaign {
	var campaign models.Campaign
	if !c.get(ctx, "campaign", campaignKey(id), &campaign) {
		return nil
	}
	return &campaign
}

// GetCampaignByCode resolves the code index and delegates to GetCampaign.
func (c *EntityCache) GetCampaignByCode(ctx context.Context, code string) *models.Campaign {
	value, found, err := c.store.Get(ctx, campaignCodeKey(code))
	if err != nil {
		log.Printf("Cache code lookup failed for %s: %v", code, err)
		cacheErrorsTotal.WithLabelValues("get").Inc()
		return nil
	}
	if !found {
		cacheMissesTotal.WithLabelValues("campaign").Inc()
		return nil
	}

	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		log.Printf("Cache code index at %s is corrupt, evicting: %v", code, err)
		_ = c.store.Del(ctx, campaignCodeKey(code))
		return nil
	}

	return c.GetCampaign(ctx, uint(id))
}

// SetCampaign caches the campaign and maintains the code -> id index.
// The index carries no TTL; it is removed only on eviction so a live
// code can always resolve while the campaign entry itself may expire.
func (c *EntityCache) SetCampaign(ctx context.Context, campaign *models.Campaign) {
	if !c.set(ctx, campaignKey(campaign.ID), campaign) {
		return
	}
	idStr := strconv.FormatUint(uint64(campaign.ID), 10)
	if err := c.store.Set(ctx, campaignCodeKey(campaign.Code), idStr, 0); err != nil {
		log.Printf("Cache code index set failed for %s: %v", campaign.Code, err)
		cacheErrorsTotal.WithLabelValues("set").Inc()
	}
}

// DeleteCampaign evicts the campaign entry and its code index. The
// streams index set is removed by the cascade in hierarchy.go.
func (c *EntityCache) DeleteCampaign(ctx context.Context, id uint, code string) {
	keys := []string{campaignKey(id)}
	if code != "" {
		keys = append(keys, campaignCodeKey(code))
	}
	c.del(ctx, keys...)
}

// Stream accessors

// GetStream returns the cached stream or nil on miss.
func (c *EntityCache) GetStream(ctx context.Context, id uint) *models.Stream {
	var stream models.Stream
	if !c.get(ctx, "stream", streamKey(id), &stream) {
		return nil
	}
	return &stream
}

// SetStream caches the stream and indexes it under its campaign.
func (c *EntityCache) SetStream(ctx context.Context, stream *models.Stream) {
	if !c.set(ctx, streamKey(stream.ID), stream) {
		return
	}
	c.indexChild(ctx, campaignStreamsKey(stream.CampaignID), stream.ID)
}

// DeleteStream evicts the stream entry, its filters index set, and its
// membership in the campaign's streams set.
func (c *EntityCache) DeleteStream(ctx context.Context, id, campaignID uint) {
	c.del(ctx, streamKey(id), streamFiltersKey(id))
	c.unindexChild(ctx, campaignStreamsKey(campaignID), id)
}

// Filter accessors

// GetFilter returns the cached filter or nil on miss.
func (c *EntityCache) GetFilter(ctx context.Context, id uint) *models.Filter {
	var filter models.Filter
	if !c.get(ctx, "filter", filterKey(id), &filter) {
		return nil
	}
	return &filter
}

// SetFilter caches the filter and indexes it under its stream.
func (c *EntityCache) SetFilter(ctx context.Context, filter *models.Filter) {
	if !c.set(ctx, filterKey(filter.ID), filter) {
		return
	}
	c.indexChild(ctx, streamFiltersKey(filter.StreamID), filter.ID)
}

// DeleteFilter evicts the filter entry and its membership in the
// stream's filters set.
func (c *EntityCache) DeleteFilter(ctx context.Context, id, streamID uint) {
	c.del(ctx, filterKey(id))
	c.unindexChild(ctx, streamFiltersKey(streamID), id)
}

// TrafficSource accessors

// GetTrafficSource returns the cached traffic source or nil on miss.
func (c *EntityCache) GetTrafficSource(ctx context.Context, id uint) *models.TrafficSource {
	var source models.TrafficSource
	if !c.get(ctx, "trafficSource", trafficSourceKey(id), &source) {
		return nil
	}
	return &source
}

// SetTrafficSource caches the traffic source.
func (c *EntityCache) SetTrafficSource(ctx context.Context, source *models.TrafficSource) {
	c.set(ctx, trafficSourceKey(source.ID), source)
}

// DeleteTrafficSource evicts the traffic source entry.
func (c *EntityCache) DeleteTrafficSource(ctx context.Context, id uint) {
	c.del(ctx, trafficSourceKey(id))
}
