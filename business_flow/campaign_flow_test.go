package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/trafficden/trafficden/app/dto"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCampaignRepo is an in-memory stand-in for the campaign repository.
type fakeCampaignRepo struct {
	campaigns map[uint]*models.Campaign
	nextID    uint
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[uint]*models.Campaign{}, nextID: 1}
}

func (r *fakeCampaignRepo) put(c models.Campaign) *models.Campaign {
	if c.ID == 0 {
		c.ID = r.nextID
		r.nextID++
	} else if c.ID >= r.nextID {
		r.nextID = c.ID + 1
	}
	r.campaigns[c.ID] = &c
	return &c
}

func (r *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCampaignRepo) ByCode(ctx context.Context, code string) (*models.Campaign, error) {
	for _, c := range r.campaigns {
		if c.Code == code {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ByIDWithStreams(ctx context.Context, id uint) (*models.Campaign, error) {
	return r.ByID(ctx, id)
}

func (r *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeCampaignRepo) Save(ctx context.Context, c *models.Campaign) error {
	saved := r.put(*c)
	*c = *saved
	return nil
}

func (r *fakeCampaignRepo) Update(ctx context.Context, c models.Campaign) error {
	if _, ok := r.campaigns[c.ID]; !ok {
		return errors.New("campaign not found")
	}
	r.campaigns[c.ID] = &c
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	matched, _ := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(matched)), nil
}

func (r *fakeCampaignRepo) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	count, _ := r.Count(ctx, filter)
	return count > 0, nil
}

func (r *fakeCampaignRepo) Delete(ctx context.Context, id uint) error {
	delete(r.campaigns, id)
	return nil
}

// fakeTrafficSourceRepo is an in-memory stand-in for the traffic source
// repository.
type fakeTrafficSourceRepo struct {
	sources map[uint]*models.TrafficSource
}

func newFakeTrafficSourceRepo() *fakeTrafficSourceRepo {
	return &fakeTrafficSourceRepo{sources: map[uint]*models.TrafficSource{}}
}

func (r *fakeTrafficSourceRepo) ByID(ctx context.Context, id uint) (*models.TrafficSource, error) {
	s, ok := r.sources[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *fakeTrafficSourceRepo) ByFilter(ctx context.Context, filter models.TrafficSourceFilter, orderBy string, limit, offset int) ([]*models.TrafficSource, error) {
	var out []*models.TrafficSource
	for _, s := range r.sources {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeTrafficSourceRepo) Save(ctx context.Context, s *models.TrafficSource) error {
	r.sources[s.ID] = s
	return nil
}

func (r *fakeTrafficSourceRepo) Update(ctx context.Context, s models.TrafficSource) error {
	r.sources[s.ID] = &s
	return nil
}

func (r *fakeTrafficSourceRepo) Count(ctx context.Context, filter models.TrafficSourceFilter) (int64, error) {
	return int64(len(r.sources)), nil
}

func (r *fakeTrafficSourceRepo) Exists(ctx context.Context, filter models.TrafficSourceFilter) (bool, error) {
	return len(r.sources) > 0, nil
}

func (r *fakeTrafficSourceRepo) Delete(ctx context.Context, id uint) error {
	delete(r.sources, id)
	return nil
}

// downStore fails every operation so the flows must fall back to the
// record store.
type downStore struct{}

var errCacheDown = errors.New("cache down")

func (downStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errCacheDown
}

func (downStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errCacheDown
}

func (downStore) Del(ctx context.Context, keys ...string) error { return errCacheDown }

func (downStore) SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error {
	return errCacheDown
}

func (downStore) SRem(ctx context.Context, key, member string) error { return errCacheDown }

func (downStore) SMembers(ctx context.Context, key string) ([]string, bool, error) {
	return nil, false, errCacheDown
}

func (downStore) Ping(ctx context.Context) error { return errCacheDown }
func (downStore) Close() error                   { return nil }

type campaignFlowEnv struct {
	flow         CampaignFlow
	campaignRepo *fakeCampaignRepo
	sourceRepo   *fakeTrafficSourceRepo
	entityCache  *cache.EntityCache
}

func newCampaignFlowEnv(t *testing.T) *campaignFlowEnv {
	t.Helper()
	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	campaignRepo := newFakeCampaignRepo()
	sourceRepo := newFakeTrafficSourceRepo()
	ec := cache.NewEntityCache(store, time.Minute)

	return &campaignFlowEnv{
		flow:         NewCampaignFlow(campaignRepo, sourceRepo, ec),
		campaignRepo: campaignRepo,
		sourceRepo:   sourceRepo,
		entityCache:  ec,
	}
}

func TestCreateCampaignGeneratesCode(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	created, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "Summer Sale"})
	require.NoError(t, err)

	assert.True(t, utils.ValidCampaignCode(created.Code), "generated code %q", created.Code)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, "usd", created.Currency)

	// Entity and code index land in the cache right after creation
	require.NotNil(t, env.entityCache.GetCampaign(ctx, created.ID))
	byCode := env.entityCache.GetCampaignByCode(ctx, created.Code)
	require.NotNil(t, byCode)
	assert.Equal(t, created.ID, byCode.ID)
}

func TestCreateCampaignExplicitCode(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	created, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
		Name: "Summer Sale",
		Code: utils.ToPtr("AB2C7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "AB2C7", created.Code)
}

func TestCreateCampaignCodeCollisionFails(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	env.campaignRepo.put(models.Campaign{Name: "Existing", Code: "AB2C7", Status: models.CampaignStatusActive, Currency: models.CurrencyUSD})

	_, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
		Name: "Summer Sale",
		Code: utils.ToPtr("AB2C7"),
	})
	require.Error(t, err)
	assert.True(t, IsCampaignCodeExists(err))

	// The failed creation must not leave anything in the record store
	count, _ := env.campaignRepo.Count(ctx, models.CampaignFilter{})
	assert.Equal(t, int64(1), count)
}

func TestCreateCampaignRejectsMalformedCode(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	for _, code := range []string{"TOOLONGCODE", "abcd2", "AB1C7", "AB2C"} {
		_, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
			Name: "Summer Sale",
			Code: utils.ToPtr(code),
		})
		require.Error(t, err, "code %q", code)
		assert.True(t, IsValidationError(err), "code %q", code)
		assert.ErrorIs(t, err, ErrInvalidCampaignCode, "code %q", code)
	}

	// Nothing reached the record store
	count, _ := env.campaignRepo.Count(ctx, models.CampaignFilter{})
	assert.Equal(t, int64(0), count)
}

func TestCreateCampaignRejectsBlankName(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	_, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "   "})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrCampaignNameRequired)
}

func TestUpdateCampaignRejectsMalformedCode(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	created, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "Summer Sale", Code: utils.ToPtr("AB2C7")})
	require.NoError(t, err)

	_, err = env.flow.UpdateCampaign(ctx, created.ID, &dto.UpdateCampaignRequest{Code: utils.ToPtr("not-a-code")})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrInvalidCampaignCode)

	// The stored campaign keeps its original code
	stored, err := env.campaignRepo.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "AB2C7", stored.Code)
}

func TestCreateCampaignUnknownTrafficSource(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	_, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{
		Name:            "Summer Sale",
		TrafficSourceID: utils.ToPtr(uint(99)),
	})
	require.Error(t, err)
	assert.True(t, IsTrafficSourceNotFound(err))
}

func TestGetCampaignServedFromCache(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	// Seed the cache only; an empty record store proves the read never
	// reached it.
	env.entityCache.SetCampaign(ctx, &models.Campaign{
		ID:       42,
		Name:     "Cached Only",
		Code:     "AB2C7",
		Status:   models.CampaignStatusActive,
		Currency: models.CurrencyUSD,
	})

	detail, err := env.flow.GetCampaign(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Cached Only", detail.Name)
	assert.Empty(t, detail.Children)
}

func TestGetCampaignFallbackRepopulatesCache(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	campaign := env.campaignRepo.put(models.Campaign{
		Name:     "Summer Sale",
		Code:     "AB2C7",
		Status:   models.CampaignStatusActive,
		Currency: models.CurrencyUSD,
		Streams: []models.Stream{
			{
				ID:         10,
				Name:       "US Desktop",
				TargetURL:  "https://example.com/a",
				Status:     models.CampaignStatusActive,
				Weight:     30,
				Filters: []models.Filter{
					{ID: 100, StreamID: 10, Type: models.FilterTypeCountry, Operation: models.FilterOperationEquals, Value: "US"},
				},
			},
		},
	})
	campaign.Streams[0].CampaignID = campaign.ID

	detail, err := env.flow.GetCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, detail.Children, 1)
	require.Len(t, detail.Children[0].Children, 1)
	assert.Equal(t, "US", detail.Children[0].Children[0].Value)

	// The fallback recached the whole subtree
	assert.NotNil(t, env.entityCache.GetCampaign(ctx, campaign.ID))
	assert.NotNil(t, env.entityCache.GetStream(ctx, 10))
	assert.NotNil(t, env.entityCache.GetFilter(ctx, 100))
	assert.NotNil(t, env.entityCache.GetCampaignByCode(ctx, "AB2C7"))
}

func TestGetCampaignNotFound(t *testing.T) {
	env := newCampaignFlowEnv(t)

	_, err := env.flow.GetCampaign(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, IsCampaignNotFound(err))
}

func TestGetCampaignByCodeFallback(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	campaign := env.campaignRepo.put(models.Campaign{Name: "Summer Sale", Code: "AB2C7", Status: models.CampaignStatusActive, Currency: models.CurrencyUSD})

	detail, err := env.flow.GetCampaignByCode(ctx, "AB2C7")
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, detail.ID)

	_, err = env.flow.GetCampaignByCode(ctx, "ZZZZZ")
	require.Error(t, err)
	assert.True(t, IsCampaignNotFound(err))
}

func TestUpdateCampaignCodeChangeReindexes(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	created, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "Summer Sale", Code: utils.ToPtr("AB2C7")})
	require.NoError(t, err)

	updated, err := env.flow.UpdateCampaign(ctx, created.ID, &dto.UpdateCampaignRequest{Code: utils.ToPtr("XY3K4")})
	require.NoError(t, err)
	assert.Equal(t, "XY3K4", updated.Code)

	// Old code must stop resolving; the new one takes over
	assert.Nil(t, env.entityCache.GetCampaignByCode(ctx, "AB2C7"))
	byCode := env.entityCache.GetCampaignByCode(ctx, "XY3K4")
	require.NotNil(t, byCode)
	assert.Equal(t, created.ID, byCode.ID)
}

func TestUpdateCampaignCodeCollisionFails(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	env.campaignRepo.put(models.Campaign{Name: "Other", Code: "XY3K4", Status: models.CampaignStatusActive, Currency: models.CurrencyUSD})
	created, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "Summer Sale", Code: utils.ToPtr("AB2C7")})
	require.NoError(t, err)

	_, err = env.flow.UpdateCampaign(ctx, created.ID, &dto.UpdateCampaignRequest{Code: utils.ToPtr("XY3K4")})
	require.Error(t, err)
	assert.True(t, IsCampaignCodeExists(err))
}

func TestDeleteCampaignEvictsCache(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	created, err := env.flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "Summer Sale", Code: utils.ToPtr("AB2C7")})
	require.NoError(t, err)

	require.NoError(t, env.flow.DeleteCampaign(ctx, created.ID))

	assert.Nil(t, env.entityCache.GetCampaign(ctx, created.ID))
	assert.Nil(t, env.entityCache.GetCampaignByCode(ctx, "AB2C7"))

	err = env.flow.DeleteCampaign(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, IsCampaignNotFound(err))
}

func TestListCampaignsDefaults(t *testing.T) {
	env := newCampaignFlowEnv(t)
	ctx := context.Background()

	env.campaignRepo.put(models.Campaign{Name: "A", Code: "AAAAA", Status: models.CampaignStatusActive, Currency: models.CurrencyUSD})
	env.campaignRepo.put(models.Campaign{Name: "B", Code: "BBBBB", Status: models.CampaignStatusInactive, Currency: models.CurrencyUSD})

	resp, err := env.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Campaigns, 2)

	resp, err = env.flow.ListCampaigns(ctx, &dto.ListCampaignsRequest{Status: utils.ToPtr("active")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
}

func TestCampaignFlowSurvivesCacheOutage(t *testing.T) {
	campaignRepo := newFakeCampaignRepo()
	sourceRepo := newFakeTrafficSourceRepo()
	flow := NewCampaignFlow(campaignRepo, sourceRepo, cache.NewEntityCache(downStore{}, time.Minute))
	ctx := context.Background()

	created, err := flow.CreateCampaign(ctx, &dto.CreateCampaignRequest{Name: "Summer Sale", Code: utils.ToPtr("AB2C7")})
	require.NoError(t, err)

	detail, err := flow.GetCampaign(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer Sale", detail.Name)

	detail, err = flow.GetCampaignByCode(ctx, "AB2C7")
	require.NoError(t, err)
	assert.Equal(t, created.ID, detail.ID)

	require.NoError(t, flow.DeleteCampaign(ctx, created.ID))
}
