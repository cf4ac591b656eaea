package repository

import (
	"context"
	"errors"

	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// StreamRepositoryImpl implements the StreamRepository interface
type StreamRepositoryImpl struct {
	*BaseRepository[models.Stream, models.StreamFilter]
}

// NewStreamRepository creates a new stream repository
func NewStreamRepository(db *gorm.DB) StreamRepository {
	return &StreamRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Stream, models.StreamFilter](db),
	}
}

// ByCampaignID retrieves all streams belonging to a campaign
func (r *StreamRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.Stream, error) {
	filter := models.StreamFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// ByIDWithFilters retrieves a stream with its filters preloaded
func (r *StreamRepositoryImpl) ByIDWithFilters(ctx context.Context, id uint) (*models.Stream, error) {
	db := r.getDB(ctx)

	var stream models.Stream
	err := db.Preload("Filters").First(&stream, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &stream, nil
}

// Update updates a stream
func (r *StreamRepositoryImpl) Update(ctx context.Context, stream models.Stream) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	stream.UpdatedAt = utils.UTCNowPtr()

	err = db.Save(&stream).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves streams based on filter criteria
func (r *StreamRepositoryImpl) ByFilter(ctx context.Context, filter models.StreamFilter, orderBy string, limit, offset int) ([]*models.Stream, error) {
	db := r.getDB(ctx)

	var streams []*models.Stream
	query := r.applyFilter(db, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&streams).Error
	if err != nil {
		return nil, err
	}

	return streams, nil
}

// Count returns the number of streams matching the filter
func (r *StreamRepositoryImpl) Count(ctx context.Context, filter models.StreamFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.Stream{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any stream matching the filter exists
func (r *StreamRepositoryImpl) Exists(ctx context.Context, filter models.StreamFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *StreamRepositoryImpl) applyFilter(db *gorm.DB, filter models.StreamFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		db = db.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.Name != nil {
		db = db.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.MinWeight != nil {
		db = db.Where("weight >= ?", *filter.MinWeight)
	}
	if filter.MaxWeight != nil {
		db = db.Where("weight <= ?", *filter.MaxWeight)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
