package dto

import (
	"time"
)

// CreateCampaignRequest represents the request to create a new campaign.
// Code is optional; when omitted a unique short code is generated.
type CreateCampaignRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Code            *string `json:"code,omitempty" validate:"omitempty,max=32"`
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Currency        *string `json:"currency,omitempty" validate:"omitempty,oneof=usd eur rub"`
	TrafficSourceID *uint   `json:"traffic_source_id,omitempty"`
}

// UpdateCampaignRequest represents the request to update an existing campaign
type UpdateCampaignRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Code            *string `json:"code,omitempty" validate:"omitempty,max=32"`
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Currency        *string `json:"currency,omitempty" validate:"omitempty,oneof=usd eur rub"`
	TrafficSourceID *uint   `json:"traffic_source_id,omitempty"`
}

// CampaignDTO represents a campaign in responses
type CampaignDTO struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Code            string     `json:"code"`
	Status          string     `json:"status"`
	Currency        string     `json:"currency"`
	TrafficSourceID *uint      `json:"traffic_source_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// CampaignDetailDTO is a campaign with its streams (and their filters)
type CampaignDetailDTO struct {
	CampaignDTO
	Children []StreamDetailDTO `json:"children"`
}

// ListCampaignsRequest represents the request to list campaigns
type ListCampaignsRequest struct {
	Status          *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	TrafficSourceID *uint   `json:"traffic_source_id,omitempty"`
	Limit           int     `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset          int     `json:"offset,omitempty" validate:"omitempty,min=0"`
}

// ListCampaignsResponse represents the response to list campaigns
type ListCampaignsResponse struct {
	Campaigns []CampaignDTO `json:"campaigns"`
	Total     int64         `json:"total"`
}
