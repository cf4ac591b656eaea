package dto

import (
	"time"
)

// CreateFilterRequest represents the request to create a new filter
type CreateFilterRequest struct {
	StreamID  uint   `json:"stream_id" validate:"required,min=1"`
	Type      string `json:"type" validate:"required,oneof=country device browser language os ip_range referrer keyword utm_source utm_medium utm_campaign"`
	Operation string `json:"operation" validate:"required,oneof=equals contains not_equals regex"`
	Value     string `json:"value" validate:"required"`
}

// UpdateFilterRequest represents the request to update an existing filter
type UpdateFilterRequest struct {
	StreamID  *uint   `json:"stream_id,omitempty" validate:"omitempty,min=1"`
	Type      *string `json:"type,omitempty" validate:"omitempty,oneof=country device browser language os ip_range referrer keyword utm_source utm_medium utm_campaign"`
	Operation *string `json:"operation,omitempty" validate:"omitempty,oneof=equals contains not_equals regex"`
	Value     *string `json:"value,omitempty"`
}

// FilterDTO represents a filter in responses
type FilterDTO struct {
	ID        uint       `json:"id"`
	StreamID  uint       `json:"stream_id"`
	Type      string     `json:"type"`
	Operation string     `json:"operation"`
	Value     string     `json:"value"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ListFiltersResponse represents the response to list filters
type ListFiltersResponse struct {
	Filters []FilterDTO `json:"filters"`
	Total   int64       `json:"total"`
}
