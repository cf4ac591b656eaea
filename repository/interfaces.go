// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/trafficden/trafficden/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByCode(ctx context.Context, code string) (*models.Campaign, error)
	ByIDWithStreams(ctx context.Context, id uint) (*models.Campaign, error)
	Update(ctx context.Context, campaign models.Campaign) error
}

// StreamRepository defines operations for streams
type StreamRepository interface {
	Repository[models.Stream, models.StreamFilter]
	ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Stream, error)
	ByIDWithFilters(ctx context.Context, id uint) (*models.Stream, error)
	Update(ctx context.Context, stream models.Stream) error
}

// FilterRepository defines operations for stream filters
type FilterRepository interface {
	Repository[models.Filter, models.FilterCriteria]
	ByStreamID(ctx context.Context, streamID uint) ([]*models.Filter, error)
	Update(ctx context.Context, filter models.Filter) error
}

// TrafficSourceRepository defines operations for traffic sources
type TrafficSourceRepository interface {
	Repository[models.TrafficSource, models.TrafficSourceFilter]
	Update(ctx context.Context, source models.TrafficSource) error
}
