// Package testing provides test utilities and database setup for testing the campaign tracker
package testing

import (
	"fmt"
	"math/rand"

	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestTrafficSource creates a traffic source with default query params
func (tf *TestFixtures) CreateTestTrafficSource(name string) (*models.TrafficSource, error) {
	source := &models.TrafficSource{
		Name: name,
		QueryParams: models.QueryParams{
			"utm_source": "{source}",
			"clickid":    "{clickid}",
		},
		Custom: false,
	}

	if err := tf.DB.DB.Create(source).Error; err != nil {
		return nil, fmt.Errorf("failed to create test traffic source: %w", err)
	}

	return source, nil
}

// CreateTestCampaign creates a campaign with a random unique code
func (tf *TestFixtures) CreateTestCampaign(name string, trafficSourceID *uint) (*models.Campaign, error) {
	code, err := utils.GenerateCampaignCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate campaign code: %w", err)
	}

	campaign := &models.Campaign{
		Name:            name,
		Code:            code,
		Status:          models.CampaignStatusActive,
		Currency:        models.CurrencyUSD,
		TrafficSourceID: trafficSourceID,
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	return campaign, nil
}

// CreateTestStream creates a stream under the given campaign
func (tf *TestFixtures) CreateTestStream(campaignID uint, name string, weight int) (*models.Stream, error) {
	stream := &models.Stream{
		CampaignID: campaignID,
		Name:       name,
		TargetURL:  fmt.Sprintf("https://landing-%d.example.com/offer", rand.Intn(10000)),
		Status:     models.CampaignStatusActive,
		Weight:     weight,
	}

	if err := tf.DB.DB.Create(stream).Error; err != nil {
		return nil, fmt.Errorf("failed to create test stream: %w", err)
	}

	return stream, nil
}

// CreateTestFilter creates a filter under the given stream
func (tf *TestFixtures) CreateTestFilter(streamID uint, filterType models.FilterType, operation models.FilterOperation, value string) (*models.Filter, error) {
	filter := &models.Filter{
		StreamID:  streamID,
		Type:      filterType,
		Operation: operation,
		Value:     value,
	}

	if err := tf.DB.DB.Create(filter).Error; err != nil {
		return nil, fmt.Errorf("failed to create test filter: %w", err)
	}

	return filter, nil
}
