package models

import (
	"time"

	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// Stream represents a weighted traffic destination belonging to a campaign
type Stream struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CampaignID uint           `gorm:"not null;index:idx_streams_campaign_id" json:"campaign_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	TargetURL  string         `gorm:"type:text;not null" json:"target_url"`
	Status     CampaignStatus `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	Weight     int            `gorm:"not null;default:100" json:"weight"`
	CreatedAt  time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"campaign,omitempty"`
	Filters  []Filter  `gorm:"foreignKey:StreamID;constraint:OnDelete:CASCADE" json:"filters,omitempty"`
}

// TableName returns the table name for the model
func (Stream) TableName() string {
	return "streams"
}

// BeforeCreate is called before creating a new record
func (s *Stream) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = CampaignStatusActive
	}
	if s.Weight <= 0 {
		s.Weight = 100
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (s *Stream) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	s.UpdatedAt = &now
	return nil
}

// StreamFilter represents filter criteria for streams
type StreamFilter struct {
	ID            *uint           `json:"id,omitempty"`
	CampaignID    *uint           `json:"campaign_id,omitempty"`
	Name          *string         `json:"name,omitempty"`
	Status        *CampaignStatus `json:"status,omitempty"`
	MinWeight     *int            `json:"min_weight,omitempty"`
	MaxWeight     *int            `json:"max_weight,omitempty"`
	CreatedAfter  *time.Time      `json:"created_after,omitempty"`
	CreatedBefore *time.Time      `json:"created_before,omitempty"`
}
