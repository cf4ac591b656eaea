// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"strings"

	"github.com/trafficden/trafficden/app/dto"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/repository"
	"github.com/trafficden/trafficden/utils"
)

// CampaignFlow handles the campaign business logic
type CampaignFlow interface {
	CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignDTO, error)
	GetCampaign(ctx context.Context, id uint) (*dto.CampaignDetailDTO, error)
	GetCampaignByCode(ctx context.Context, code string) (*dto.CampaignDetailDTO, error)
	ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error)
	UpdateCampaign(ctx context.Context, id uint, req *dto.UpdateCampaignRequest) (*dto.CampaignDTO, error)
	DeleteCampaign(ctx context.Context, id uint) error
}

// CampaignFlowImpl implements the campaign business flow.
//
// Ordering on every mutation: the record store write is acknowledged
// before any cache write is attempted, so a crash in between leaves the
// cache stale-but-harmless rather than ahead of the store.
type CampaignFlowImpl struct {
	campaignRepo      repository.CampaignRepository
	trafficSourceRepo repository.TrafficSourceRepository
	entityCache       *cache.EntityCache
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	trafficSourceRepo repository.TrafficSourceRepository,
	entityCache *cache.EntityCache,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo:      campaignRepo,
		trafficSourceRepo: trafficSourceRepo,
		entityCache:       entityCache,
	}
}

// CreateCampaign handles the complete campaign creation process.
// When no code is supplied a fresh one is generated; a collision with
// an existing code fails the creation instead of re-drawing, for both
// generated and explicit codes.
func (s *CampaignFlowImpl) CreateCampaign(ctx context.Context, req *dto.CreateCampaignRequest) (*dto.CampaignDTO, error) {
	if err := validateCampaignInput(req.Name, req.Status, req.Currency); err != nil {
		return nil, err
	}

	code := ""
	if req.Code != nil && *req.Code != "" {
		if !utils.ValidCampaignCode(*req.Code) {
			return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Invalid campaign code", ErrInvalidCampaignCode)
		}
		code = *req.Code
	} else {
		generated, err := utils.GenerateCampaignCode()
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_CODE_GENERATION_FAILED", "Failed to generate campaign code", err)
		}
		code = generated
	}

	existing, err := s.campaignRepo.ByCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_CODE_LOOKUP_FAILED", "Failed to check campaign code", err)
	}
	if existing != nil {
		return nil, NewBusinessError("CAMPAIGN_CODE_EXISTS", "Campaign code already exists", ErrCampaignCodeExists)
	}

	if req.TrafficSourceID != nil {
		source, err := s.trafficSourceRepo.ByID(ctx, *req.TrafficSourceID)
		if err != nil {
			return nil, NewBusinessError("TRAFFIC_SOURCE_LOOKUP_FAILED", "Failed to lookup traffic source", err)
		}
		if source == nil {
			return nil, NewBusinessError("TRAFFIC_SOURCE_NOT_FOUND", "Traffic source not found", ErrTrafficSourceNotFound)
		}
	}

	campaign := models.Campaign{
		Name:            req.Name,
		Code:            code,
		Status:          models.CampaignStatusActive,
		Currency:        models.CurrencyUSD,
		TrafficSourceID: req.TrafficSourceID,
	}
	if req.Status != nil {
		campaign.Status = models.CampaignStatus(*req.Status)
	}
	if req.Currency != nil {
		campaign.Currency = models.Currency(*req.Currency)
	}

	if err := s.campaignRepo.Save(ctx, &campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	// Best-effort cache population; the next read repopulates on miss.
	s.entityCache.SetCampaign(ctx, &campaign)

	resp := ToCampaignDTO(campaign)
	return &resp, nil
}

// GetCampaign returns the campaign with its streams and filters,
// assembled from the cache when possible and from the record store
// otherwise. A store fallback repopulates the cached subtree.
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, id uint) (*dto.CampaignDetailDTO, error) {
	if node := s.entityCache.CampaignWithStreams(ctx, id); node != nil {
		resp := ToCampaignDetailDTO(*node)
		return &resp, nil
	}

	campaign, err := s.campaignRepo.ByIDWithStreams(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	s.cacheCampaignTree(ctx, campaign)

	resp := campaignDetailFromModel(*campaign)
	return &resp, nil
}

// GetCampaignByCode resolves the code through the cache's secondary
// index, falling back to the record store on miss.
func (s *CampaignFlowImpl) GetCampaignByCode(ctx context.Context, code string) (*dto.CampaignDetailDTO, error) {
	if cached := s.entityCache.GetCampaignByCode(ctx, code); cached != nil {
		return s.GetCampaign(ctx, cached.ID)
	}

	campaign, err := s.campaignRepo.ByCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	return s.GetCampaign(ctx, campaign.ID)
}

// ListCampaigns returns campaigns straight from the record store.
func (s *CampaignFlowImpl) ListCampaigns(ctx context.Context, req *dto.ListCampaignsRequest) (*dto.ListCampaignsResponse, error) {
	filter := models.CampaignFilter{
		TrafficSourceID: req.TrafficSourceID,
	}
	if req.Status != nil {
		status := models.CampaignStatus(*req.Status)
		filter.Status = &status
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	campaigns, err := s.campaignRepo.ByFilter(ctx, filter, "created_at DESC", limit, req.Offset)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}

	total, err := s.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_COUNT_FAILED", "Failed to count campaigns", err)
	}

	resp := &dto.ListCampaignsResponse{
		Campaigns: make([]dto.CampaignDTO, 0, len(campaigns)),
		Total:     total,
	}
	for _, campaign := range campaigns {
		resp.Campaigns = append(resp.Campaigns, ToCampaignDTO(*campaign))
	}

	return resp, nil
}

// UpdateCampaign applies a partial update, re-checking code uniqueness
// when the code changes.
func (s *CampaignFlowImpl) UpdateCampaign(ctx context.Context, id uint, req *dto.UpdateCampaignRequest) (*dto.CampaignDTO, error) {
	campaign, err := s.campaignRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	oldCode := campaign.Code

	name := campaign.Name
	if req.Name != nil {
		name = *req.Name
	}
	if err := validateCampaignInput(name, req.Status, req.Currency); err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != campaign.Code {
		if !utils.ValidCampaignCode(*req.Code) {
			return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Invalid campaign code", ErrInvalidCampaignCode)
		}
		existing, err := s.campaignRepo.ByCode(ctx, *req.Code)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_CODE_LOOKUP_FAILED", "Failed to check campaign code", err)
		}
		if existing != nil {
			return nil, NewBusinessError("CAMPAIGN_CODE_EXISTS", "Campaign code already exists", ErrCampaignCodeExists)
		}
		campaign.Code = *req.Code
	}

	if req.TrafficSourceID != nil {
		source, err := s.trafficSourceRepo.ByID(ctx, *req.TrafficSourceID)
		if err != nil {
			return nil, NewBusinessError("TRAFFIC_SOURCE_LOOKUP_FAILED", "Failed to lookup traffic source", err)
		}
		if source == nil {
			return nil, NewBusinessError("TRAFFIC_SOURCE_NOT_FOUND", "Traffic source not found", ErrTrafficSourceNotFound)
		}
		campaign.TrafficSourceID = req.TrafficSourceID
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Status != nil {
		campaign.Status = models.CampaignStatus(*req.Status)
	}
	if req.Currency != nil {
		campaign.Currency = models.Currency(*req.Currency)
	}

	if err := s.campaignRepo.Update(ctx, *campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Campaign update failed", err)
	}

	// A code change must drop the old code index before re-caching, or
	// the stale code would keep resolving.
	if campaign.Code != oldCode {
		s.entityCache.DeleteCampaign(ctx, campaign.ID, oldCode)
	}
	s.entityCache.SetCampaign(ctx, campaign)

	resp := ToCampaignDTO(*campaign)
	return &resp, nil
}

// DeleteCampaign removes the campaign from the record store (dependent
// streams and filters go with it via ON DELETE CASCADE) and then
// cascades the eviction through the cache.
func (s *CampaignFlowImpl) DeleteCampaign(ctx context.Context, id uint) error {
	campaign, err := s.campaignRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	if err := s.campaignRepo.Delete(ctx, id); err != nil {
		return NewBusinessError("CAMPAIGN_DELETION_FAILED", "Campaign deletion failed", err)
	}

	s.entityCache.CascadeDeleteCampaign(ctx, id, campaign.Code)

	return nil
}

// validateCampaignInput checks the fields the record store cannot
// reject cleanly on its own.
func validateCampaignInput(name string, status, currency *string) error {
	if strings.TrimSpace(name) == "" {
		return NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign name is required", ErrCampaignNameRequired)
	}
	if status != nil && !models.CampaignStatus(*status).Valid() {
		return NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Invalid campaign status", ErrInvalidCampaignStatus)
	}
	if currency != nil && !models.Currency(*currency).Valid() {
		return NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Invalid currency", ErrInvalidCurrency)
	}
	return nil
}

// cacheCampaignTree repopulates the flat cache entries and index sets
// for a campaign loaded with streams and filters.
func (s *CampaignFlowImpl) cacheCampaignTree(ctx context.Context, campaign *models.Campaign) {
	s.entityCache.SetCampaign(ctx, campaign)
	for i := range campaign.Streams {
		stream := &campaign.Streams[i]
		s.entityCache.SetStream(ctx, stream)
		for j := range stream.Filters {
			s.entityCache.SetFilter(ctx, &stream.Filters[j])
		}
	}
}
