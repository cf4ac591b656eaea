package dto

import (
	"time"
)

// CreateTrafficSourceRequest represents the request to create a traffic source
type CreateTrafficSourceRequest struct {
	Name        string            `json:"name" validate:"required,max=255"`
	QueryParams map[string]string `json:"query_params" validate:"required"`
	Custom      *bool             `json:"custom,omitempty"`
}

// UpdateTrafficSourceRequest represents the request to update a traffic source
type UpdateTrafficSourceRequest struct {
	Name        *string           `json:"name,omitempty" validate:"omitempty,max=255"`
	QueryParams map[string]string `json:"query_params,omitempty"`
	Custom      *bool             `json:"custom,omitempty"`
}

// TrafficSourceDTO represents a traffic source in responses
type TrafficSourceDTO struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	QueryParams map[string]string `json:"query_params"`
	Custom      bool              `json:"custom"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
}

// ListTrafficSourcesResponse represents the response to list traffic sources
type ListTrafficSourcesResponse struct {
	TrafficSources []TrafficSourceDTO `json:"traffic_sources"`
	Total          int64              `json:"total"`
}
