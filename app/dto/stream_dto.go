package dto

import (
	"time"
)

// CreateStreamRequest represents the request to create a new stream
type CreateStreamRequest struct {
	CampaignID uint    `json:"campaign_id" validate:"required,min=1"`
	Name       string  `json:"name" validate:"required,max=255"`
	TargetURL  string  `json:"target_url" validate:"required,url"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Weight     *int    `json:"weight,omitempty" validate:"omitempty,min=1"`
}

// UpdateStreamRequest represents the request to update an existing stream
type UpdateStreamRequest struct {
	CampaignID *uint   `json:"campaign_id,omitempty" validate:"omitempty,min=1"`
	Name       *string `json:"name,omitempty" validate:"omitempty,max=255"`
	TargetURL  *string `json:"target_url,omitempty" validate:"omitempty,url"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Weight     *int    `json:"weight,omitempty" validate:"omitempty,min=1"`
}

// StreamDTO represents a stream in responses
type StreamDTO struct {
	ID         uint       `json:"id"`
	CampaignID uint       `json:"campaign_id"`
	Name       string     `json:"name"`
	TargetURL  string     `json:"target_url"`
	Status     string     `json:"status"`
	Weight     int        `json:"weight"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// StreamDetailDTO is a stream with its filters
type StreamDetailDTO struct {
	StreamDTO
	Children []FilterDTO `json:"children"`
}

// ListStreamsResponse represents the response to list streams
type ListStreamsResponse struct {
	Streams []StreamDTO `json:"streams"`
	Total   int64       `json:"total"`
}
