package repository

import (
	"context"

	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// FilterRepositoryImpl implements the FilterRepository interface
type FilterRepositoryImpl struct {
	*BaseRepository[models.Filter, models.FilterCriteria]
}

// NewFilterRepository creates a new filter repository
func NewFilterRepository(db *gorm.DB) FilterRepository {
	return &FilterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Filter, models.FilterCriteria](db),
	}
}

// ByStreamID retrieves all filters belonging to a stream
func (r *FilterRepositoryImpl) ByStreamID(ctx context.Context, streamID uint) ([]*models.Filter, error) {
	criteria := models.FilterCriteria{StreamID: &streamID}
	return r.ByFilter(ctx, criteria, "id ASC", 0, 0)
}

// Update updates a filter
func (r *FilterRepositoryImpl) Update(ctx context.Context, filter models.Filter) error {
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

	filter.UpdatedAt = utils.UTCNowPtr()

	err = db.Save(&filter).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves filters based on filter criteria
func (r *FilterRepositoryImpl) ByFilter(ctx context.Context, criteria models.FilterCriteria, orderBy string, limit, offset int) ([]*models.Filter, error) {
	db := r.getDB(ctx)

	var filters []*models.Filter
	query := r.applyCriteria(db, criteria)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&filters).Error
	if err != nil {
		return nil, err
	}

	return filters, nil
}

// Count returns the number of filters matching the criteria
func (r *FilterRepositoryImpl) Count(ctx context.Context, criteria models.FilterCriteria) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	query := r.applyCriteria(db.Model(&models.Filter{}), criteria)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any filter matching the criteria exists
func (r *FilterRepositoryImpl) Exists(ctx context.Context, criteria models.FilterCriteria) (bool, error) {
	count, err := r.Count(ctx, criteria)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyCriteria applies filter conditions to the GORM query
func (r *FilterRepositoryImpl) applyCriteria(db *gorm.DB, criteria models.FilterCriteria) *gorm.DB {
	if criteria.ID != nil {
		db = db.Where("id = ?", *criteria.ID)
	}
	if criteria.StreamID != nil {
		db = db.Where("stream_id = ?", *criteria.StreamID)
	}
	if criteria.Type != nil {
		db = db.Where("type = ?", *criteria.Type)
	}
	if criteria.Operation != nil {
		db = db.Where("operation = ?", *criteria.Operation)
	}
	if criteria.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *criteria.CreatedAfter)
	}
	if criteria.CreatedBefore != nil {
		db = db.Where("created_at < ?", *criteria.CreatedBefore)
	}

	return db
}
