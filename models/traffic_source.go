package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// QueryParams maps an inbound click parameter name to its human-readable label
type QueryParams map[string]string

// Value implements the driver.Valuer interface for QueryParams
func (q QueryParams) Value() (driver.Value, error) {
	return json.Marshal(q)
}

// Scan implements the sql.Scanner interface for QueryParams
func (q *QueryParams) Scan(value any) error {
	if value == nil {
		*q = QueryParams{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into QueryParams", value)
	}

	return json.Unmarshal(bytes, q)
}

// TrafficSource describes the click-parameter conventions of an inbound
// traffic network. Independent of the campaign hierarchy.
type TrafficSource struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"type:varchar(255);not null" json:"name"`
	QueryParams QueryParams `gorm:"type:jsonb;not null" json:"query_params"`
	Custom      bool        `gorm:"not null;default:false" json:"custom"`
	CreatedAt   time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// TableName returns the table name for the model
func (TrafficSource) TableName() string {
	return "traffic_sources"
}

// BeforeCreate is called before creating a new record
func (t *TrafficSource) BeforeCreate(tx *gorm.DB) error {
	if t.QueryParams == nil {
		t.QueryParams = QueryParams{}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (t *TrafficSource) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	t.UpdatedAt = &now
	return nil
}

// TrafficSourceFilter represents filter criteria for traffic sources
type TrafficSourceFilter struct {
	ID            *uint      `json:"id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Custom        *bool      `json:"custom,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
