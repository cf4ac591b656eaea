package repository

import (
	"context"

	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// TrafficSourceRepositoryImpl implements the TrafficSourceRepository interface
type TrafficSourceRepositoryImpl struct {
	*BaseRepository[models.TrafficSource, models.TrafficSourceFilter]
}

// NewTrafficSourceRepository creates a new traffic source repository
func NewTrafficSourceRepository(db *gorm.DB) TrafficSourceRepository {
	return &TrafficSourceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TrafficSource, models.TrafficSourceFilter](db),
	}
}

// Update updates a traffic source
func (r *TrafficSourceRepositoryImpl) Update(ctx context.Context, source models.TrafficSource) error {
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

	source.UpdatedAt = utils.UTCNowPtr()

	err = db.Save(&source).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves traffic sources based on filter criteria
func (r *TrafficSourceRepositoryImpl) ByFilter(ctx context.Context, filter models.TrafficSourceFilter, orderBy string, limit, offset int) ([]*models.TrafficSource, error) {
	db := r.getDB(ctx)

	var sources []*models.TrafficSource
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

	err := query.Find(&sources).Error
	if err != nil {
		return nil, err
	}

	return sources, nil
}

// Count returns the number of traffic sources matching the filter
func (r *TrafficSourceRepositoryImpl) Count(ctx context.Context, filter models.TrafficSourceFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyFilter(db.Model(&models.TrafficSource{}), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any traffic source matching the filter exists
func (r *TrafficSourceRepositoryImpl) Exists(ctx context.Context, filter models.TrafficSourceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *TrafficSourceRepositoryImpl) applyFilter(db *gorm.DB, filter models.TrafficSourceFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		db = db.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	if filter.Custom != nil {
		db = db.Where("custom = ?", *filter.Custom)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
