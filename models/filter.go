package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/trafficden/trafficden/utils"
	"gorm.io/gorm"
)

// FilterType represents the dimension a filter matches against
type FilterType string

const (
	FilterTypeCountry     FilterType = "country"
	FilterTypeDevice      FilterType = "device"
	FilterTypeBrowser     FilterType = "browser"
	FilterTypeLanguage    FilterType = "language"
	FilterTypeOS          FilterType = "os"
	FilterTypeIPRange     FilterType = "ip_range"
	FilterTypeReferrer    FilterType = "referrer"
	FilterTypeKeyword     FilterType = "keyword"
	FilterTypeUTMSource   FilterType = "utm_source"
	FilterTypeUTMMedium   FilterType = "utm_medium"
	FilterTypeUTMCampaign FilterType = "utm_campaign"
)

// Valid checks if the filter type is valid
func (t FilterType) Valid() bool {
	switch t {
	case FilterTypeCountry, FilterTypeDevice, FilterTypeBrowser,
		FilterTypeLanguage, FilterTypeOS, FilterTypeIPRange,
		FilterTypeReferrer, FilterTypeKeyword, FilterTypeUTMSource,
		FilterTypeUTMMedium, FilterTypeUTMCampaign:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for FilterType
func (t *FilterType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = FilterType(v)
	case []byte:
		*t = FilterType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into FilterType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for FilterType
func (t FilterType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid FilterType: %s", t)
	}
	return string(t), nil
}

// FilterOperation represents how a filter value is compared
type FilterOperation string

const (
	FilterOperationEquals    FilterOperation = "equals"
	FilterOperationContains  FilterOperation = "contains"
	FilterOperationNotEquals FilterOperation = "not_equals"
	FilterOperationRegex     FilterOperation = "regex"
)

// Valid checks if the operation is valid
func (o FilterOperation) Valid() bool {
	switch o {
	case FilterOperationEquals, FilterOperationContains,
		FilterOperationNotEquals, FilterOperationRegex:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for FilterOperation
func (o *FilterOperation) Scan(value any) error {
	if value == nil {
		*o = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*o = FilterOperation(v)
	case []byte:
		*o = FilterOperation(string(v))
	default:
		return fmt.Errorf("cannot scan %T into FilterOperation", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for FilterOperation
func (o FilterOperation) Value() (driver.Value, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid FilterOperation: %s", o)
	}
	return string(o), nil
}

// Filter represents a matching rule belonging to a stream. The rule is
// stored and cached as an opaque attribute; evaluation against live
// requests happens outside this service.
type Filter struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	StreamID  uint            `gorm:"not null;index:idx_filters_stream_id" json:"stream_id"`
	Type      FilterType      `gorm:"type:varchar(16);not null" json:"type"`
	Operation FilterOperation `gorm:"type:varchar(16);not null" json:"operation"`
	Value     string          `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`

	// Relations
	Stream *Stream `gorm:"foreignKey:StreamID;references:ID" json:"stream,omitempty"`
}

// TableName returns the table name for the model
func (Filter) TableName() string {
	return "filters"
}

// BeforeCreate is called before creating a new record
func (f *Filter) BeforeCreate(tx *gorm.DB) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (f *Filter) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	f.UpdatedAt = &now
	return nil
}

// FilterCriteria represents filter criteria for filter rules
type FilterCriteria struct {
	ID            *uint            `json:"id,omitempty"`
	StreamID      *uint            `json:"stream_id,omitempty"`
	Type          *FilterType      `json:"type,omitempty"`
	Operation     *FilterOperation `json:"operation,omitempty"`
	CreatedAfter  *time.Time       `json:"created_after,omitempty"`
	CreatedBefore *time.Time       `json:"created_before,omitempty"`
}
