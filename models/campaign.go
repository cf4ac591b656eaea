package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// CampaignStatus represents the status of a campaign
type CampaignStatus string

const (
	CampaignStatusActive   CampaignStatus = "active"
	CampaignStatusInactive CampaignStatus = "inactive"
)

// String returns the string representation of the status
func (s CampaignStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignStatusActive, CampaignStatusInactive:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for CampaignStatus
func (s *CampaignStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = CampaignStatus(v)
	case []byte:
		*s = CampaignStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into CampaignStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for CampaignStatus
func (s CampaignStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid CampaignStatus: %s", s)
	}
	return string(s), nil
}

// Currency represents the billing currency of a campaign
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyEUR Currency = "eur"
	CurrencyRUB Currency = "rub"
)

// Valid checks if the currency is valid
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyRUB:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for Currency
func (c *Currency) Scan(value any) error {
	if value == nil {
		*c = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*c = Currency(v)
	case []byte:
		*c = Currency(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Currency", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for Currency
func (c Currency) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid Currency: %s", c)
	}
	return string(c), nil
}

// Campaign represents an advertising campaign in the database
type Campaign struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(255);not null" json:"name"`
	Code            string         `gorm:"type:varchar(5);not null;uniqueIndex:uk_campaigns_code" json:"code"`
	Status          CampaignStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_campaigns_status" json:"status"`
	Currency        Currency       `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	TrafficSourceID *uint          `gorm:"index:idx_campaigns_traffic_source_id" json:"traffic_source_id,omitempty"`
	CreatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`

	// Relations
	TrafficSource *TrafficSource `gorm:"foreignKey:TrafficSourceID;references:ID;constraint:OnDelete:SET NULL" json:"traffic_source,omitempty"`
	Streams       []Stream       `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE" json:"streams,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CampaignStatusActive
	}
	if c.Currency == "" {
		c.Currency = CurrencyUSD
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// IsActive checks if the campaign is accepting traffic
func (c *Campaign) IsActive() bool {
	return c.Status == CampaignStatusActive
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID              *uint           `json:"id,omitempty"`
	Name            *string         `json:"name,omitempty"`
	Code            *string         `json:"code,omitempty"`
	Status          *CampaignStatus `json:"status,omitempty"`
	Currency        *Currency       `json:"currency,omitempty"`
	TrafficSourceID *uint           `json:"traffic_source_id,omitempty"`
	CreatedAfter    *time.Time      `json:"created_after,omitempty"`
	CreatedBefore   *time.Time      `json:"created_before,omitempty"`
}
