// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/trafficden/trafficden/app/dto"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/models"
)

// ToCampaignDTO converts a campaign model to its response shape
func ToCampaignDTO(campaign models.Campaign) dto.CampaignDTO {
	return dto.CampaignDTO{
		ID:              campaign.ID,
		Name:            campaign.Name,
		Code:            campaign.Code,
		Status:          string(campaign.Status),
		Currency:        string(campaign.Currency),
		TrafficSourceID: campaign.TrafficSourceID,
		CreatedAt:       campaign.CreatedAt,
		UpdatedAt:       campaign.UpdatedAt,
	}
}

// ToStreamDTO converts a stream model to its response shape
func ToStreamDTO(stream models.Stream) dto.StreamDTO {
	return dto.StreamDTO{
		ID:         stream.ID,
		CampaignID: stream.CampaignID,
		Name:       stream.Name,
		TargetURL:  stream.TargetURL,
		Status:     string(stream.Status),
		Weight:     stream.Weight,
		CreatedAt:  stream.CreatedAt,
		UpdatedAt:  stream.UpdatedAt,
	}
}

// ToFilterDTO converts a filter model to its response shape
func ToFilterDTO(filter models.Filter) dto.FilterDTO {
	return dto.FilterDTO{
		ID:        filter.ID,
		StreamID:  filter.StreamID,
		Type:      string(filter.Type),
		Operation: string(filter.Operation),
		Value:     filter.Value,
		CreatedAt: filter.CreatedAt,
		UpdatedAt: filter.UpdatedAt,
	}
}

// ToTrafficSourceDTO converts a traffic source model to its response shape
func ToTrafficSourceDTO(source models.TrafficSource) dto.TrafficSourceDTO {
	return dto.TrafficSourceDTO{
		ID:          source.ID,
		Name:        source.Name,
		QueryParams: source.QueryParams,
		Custom:      source.Custom,
		CreatedAt:   source.CreatedAt,
		UpdatedAt:   source.UpdatedAt,
	}
}

// ToStreamDetailDTO converts an assembled stream composite
func ToStreamDetailDTO(node cache.StreamNode) dto.StreamDetailDTO {
	detail := dto.StreamDetailDTO{
		StreamDTO: ToStreamDTO(node.Stream),
		Children:  make([]dto.FilterDTO, 0, len(node.Children)),
	}
	for _, filter := range node.Children {
		detail.Children = append(detail.Children, ToFilterDTO(filter))
	}
	return detail
}

// ToCampaignDetailDTO converts an assembled campaign composite
func ToCampaignDetailDTO(node cache.CampaignNode) dto.CampaignDetailDTO {
	detail := dto.CampaignDetailDTO{
		CampaignDTO: ToCampaignDTO(node.Campaign),
		Children:    make([]dto.StreamDetailDTO, 0, len(node.Children)),
	}
	for _, stream := range node.Children {
		detail.Children = append(detail.Children, ToStreamDetailDTO(stream))
	}
	return detail
}

// streamDetailFromModel builds the composite shape straight from a
// stream loaded with its filters from the record store.
func streamDetailFromModel(stream models.Stream) dto.StreamDetailDTO {
	detail := dto.StreamDetailDTO{
		StreamDTO: ToStreamDTO(stream),
		Children:  make([]dto.FilterDTO, 0, len(stream.Filters)),
	}
	for _, filter := range stream.Filters {
		detail.Children = append(detail.Children, ToFilterDTO(filter))
	}
	return detail
}

// campaignDetailFromModel builds the composite shape straight from a
// campaign loaded with streams and filters from the record store.
func campaignDetailFromModel(campaign models.Campaign) dto.CampaignDetailDTO {
	detail := dto.CampaignDetailDTO{
		CampaignDTO: ToCampaignDTO(campaign),
		Children:    make([]dto.StreamDetailDTO, 0, len(campaign.Streams)),
	}
	for _, stream := range campaign.Streams {
		detail.Children = append(detail.Children, streamDetailFromModel(stream))
	}
	return detail
}
