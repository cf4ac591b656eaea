package repository

import (
	"context"
	"os"
	"testing"

	"github.com/trafficden/trafficden/models"
	apptesting "github.com/trafficden/trafficden/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupRepoTest creates a throwaway Postgres database. Tests are skipped
// unless TEST_DB_HOST points at a reachable server.
func setupRepoTest(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database tests")
	}

	testDB, err := apptesting.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("teardown failed: %v", err)
		}
	})

	return testDB.DB
}

func TestCampaignRepositorySaveAndLookup(t *testing.T) {
	db := setupRepoTest(t)
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	campaign := &models.Campaign{Name: "Summer Sale", Code: "AB2C7"}
	require.NoError(t, repo.Save(ctx, campaign))
	require.NotZero(t, campaign.ID)

	byID, err := repo.ByID(ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Summer Sale", byID.Name)
	assert.Equal(t, models.CampaignStatusActive, byID.Status)
	assert.Equal(t, models.CurrencyUSD, byID.Currency)

	byCode, err := repo.ByCode(ctx, "AB2C7")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, campaign.ID, byCode.ID)

	missing, err := repo.ByCode(ctx, "ZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.ByID(ctx, campaign.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCampaignRepositoryCodeUniqueness(t *testing.T) {
	db := setupRepoTest(t)
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Campaign{Name: "First", Code: "AB2C7"}))
	err := repo.Save(ctx, &models.Campaign{Name: "Second", Code: "AB2C7"})
	assert.Error(t, err)
}

func TestCampaignRepositoryByIDWithStreams(t *testing.T) {
	db := setupRepoTest(t)
	campaignRepo := NewCampaignRepository(db)
	streamRepo := NewStreamRepository(db)
	filterRepo := NewFilterRepository(db)
	ctx := context.Background()

	campaign := &models.Campaign{Name: "Summer Sale", Code: "AB2C7"}
	require.NoError(t, campaignRepo.Save(ctx, campaign))

	stream := &models.Stream{CampaignID: campaign.ID, Name: "US Desktop", TargetURL: "https://example.com/a", Weight: 30}
	require.NoError(t, streamRepo.Save(ctx, stream))

	filter := &models.Filter{StreamID: stream.ID, Type: models.FilterTypeCountry, Operation: models.FilterOperationEquals, Value: "US"}
	require.NoError(t, filterRepo.Save(ctx, filter))

	loaded, err := campaignRepo.ByIDWithStreams(ctx, campaign.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Streams, 1)
	require.Len(t, loaded.Streams[0].Filters, 1)
	assert.Equal(t, "US", loaded.Streams[0].Filters[0].Value)
}

func TestCampaignRepositoryDeleteCascades(t *testing.T) {
	db := setupRepoTest(t)
	campaignRepo := NewCampaignRepository(db)
	streamRepo := NewStreamRepository(db)
	filterRepo := NewFilterRepository(db)
	ctx := context.Background()

	campaign := &models.Campaign{Name: "Summer Sale", Code: "AB2C7"}
	require.NoError(t, campaignRepo.Save(ctx, campaign))
	stream := &models.Stream{CampaignID: campaign.ID, Name: "US Desktop", TargetURL: "https://example.com/a"}
	require.NoError(t, streamRepo.Save(ctx, stream))
	filter := &models.Filter{StreamID: stream.ID, Type: models.FilterTypeCountry, Operation: models.FilterOperationEquals, Value: "US"}
	require.NoError(t, filterRepo.Save(ctx, filter))

	require.NoError(t, campaignRepo.Delete(ctx, campaign.ID))

	gone, err := streamRepo.ByID(ctx, stream.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	goneFilter, err := filterRepo.ByID(ctx, filter.ID)
	require.NoError(t, err)
	assert.Nil(t, goneFilter)
}

func TestCampaignRepositoryFilterAndCount(t *testing.T) {
	db := setupRepoTest(t)
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Campaign{Name: "Active one", Code: "AAAAA"}))
	require.NoError(t, repo.Save(ctx, &models.Campaign{Name: "Paused one", Code: "BBBBB", Status: models.CampaignStatusInactive}))

	status := models.CampaignStatusActive
	active, err := repo.ByFilter(ctx, models.CampaignFilter{Status: &status}, "created_at DESC", 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "AAAAA", active[0].Code)

	total, err := repo.Count(ctx, models.CampaignFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
