package businessflow

import (
	"context"
	"strings"

	"github.com/trafficden/trafficden/app/dto"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/repository"
)

// StreamFlow handles the stream business logic
type StreamFlow interface {
	CreateStream(ctx context.Context, req *dto.CreateStreamRequest) (*dto.StreamDTO, error)
	GetStream(ctx context.Context, id uint) (*dto.StreamDetailDTO, error)
	ListStreams(ctx context.Context, campaignID uint) (*dto.ListStreamsResponse, error)
	UpdateStream(ctx context.Context, id uint, req *dto.UpdateStreamRequest) (*dto.StreamDTO, error)
	DeleteStream(ctx context.Context, id uint) error
}

// StreamFlowImpl implements the stream business flow
type StreamFlowImpl struct {
	streamRepo   repository.StreamRepository
	campaignRepo repository.CampaignRepository
	entityCache  *cache.EntityCache
}

// NewStreamFlow creates a new stream flow instance
func NewStreamFlow(
	streamRepo repository.StreamRepository,
	campaignRepo repository.CampaignRepository,
	entityCache *cache.EntityCache,
) StreamFlow {
	return &StreamFlowImpl{
		streamRepo:   streamRepo,
		campaignRepo: campaignRepo,
		entityCache:  entityCache,
	}
}

// CreateStream creates a stream under an existing campaign.
func (s *StreamFlowImpl) CreateStream(ctx context.Context, req *dto.CreateStreamRequest) (*dto.StreamDTO, error) {
	if err := validateStreamInput(req.Name, req.TargetURL, req.Status, req.Weight); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.ByID(ctx, req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	stream := models.Stream{
		CampaignID: req.CampaignID,
		Name:       req.Name,
		TargetURL:  req.TargetURL,
		Status:     models.CampaignStatusActive,
	}
	if req.Status != nil {
		stream.Status = models.CampaignStatus(*req.Status)
	}
	if req.Weight != nil {
		stream.Weight = *req.Weight
	}

	if err := s.streamRepo.Save(ctx, &stream); err != nil {
		return nil, NewBusinessError("STREAM_CREATION_FAILED", "Stream creation failed", err)
	}

	s.entityCache.SetStream(ctx, &stream)

	resp := ToStreamDTO(stream)
	return &resp, nil
}

// GetStream returns the stream with its filters, cache first.
func (s *StreamFlowImpl) GetStream(ctx context.Context, id uint) (*dto.StreamDetailDTO, error) {
	if node := s.entityCache.StreamWithFilters(ctx, id); node != nil {
		resp := ToStreamDetailDTO(*node)
		return &resp, nil
	}

	stream, err := s.streamRepo.ByIDWithFilters(ctx, id)
	if err != nil {
		return nil, NewBusinessError("STREAM_LOOKUP_FAILED", "Failed to lookup stream", err)
	}
	if stream == nil {
		return nil, NewBusinessError("STREAM_NOT_FOUND", "Stream not found", ErrStreamNotFound)
	}

	s.cacheStreamTree(ctx, stream)

	resp := streamDetailFromModel(*stream)
	return &resp, nil
}

// ListStreams returns the streams of a campaign from the record store.
func (s *StreamFlowImpl) ListStreams(ctx context.Context, campaignID uint) (*dto.ListStreamsResponse, error) {
	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	streams, err := s.streamRepo.ByCampaignID(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("STREAM_LIST_FAILED", "Failed to list streams", err)
	}

	resp := &dto.ListStreamsResponse{
		Streams: make([]dto.StreamDTO, 0, len(streams)),
		Total:   int64(len(streams)),
	}
	for _, stream := range streams {
		resp.Streams = append(resp.Streams, ToStreamDTO(*stream))
	}

	return resp, nil
}

// UpdateStream applies a partial update. Moving a stream to another
// campaign re-indexes it under the new parent in the cache.
func (s *StreamFlowImpl) UpdateStream(ctx context.Context, id uint, req *dto.UpdateStreamRequest) (*dto.StreamDTO, error) {
	stream, err := s.streamRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("STREAM_LOOKUP_FAILED", "Failed to lookup stream", err)
	}
	if stream == nil {
		return nil, NewBusinessError("STREAM_NOT_FOUND", "Stream not found", ErrStreamNotFound)
	}

	oldCampaignID := stream.CampaignID

	name, targetURL := stream.Name, stream.TargetURL
	if req.Name != nil {
		name = *req.Name
	}
	if req.TargetURL != nil {
		targetURL = *req.TargetURL
	}
	if err := validateStreamInput(name, targetURL, req.Status, req.Weight); err != nil {
		return nil, err
	}

	if req.CampaignID != nil && *req.CampaignID != stream.CampaignID {
		campaign, err := s.campaignRepo.ByID(ctx, *req.CampaignID)
		if err != nil {
			return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
		}
		if campaign == nil {
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
		}
		stream.CampaignID = *req.CampaignID
	}

	if req.Name != nil {
		stream.Name = *req.Name
	}
	if req.TargetURL != nil {
		stream.TargetURL = *req.TargetURL
	}
	if req.Status != nil {
		stream.Status = models.CampaignStatus(*req.Status)
	}
	if req.Weight != nil {
		stream.Weight = *req.Weight
	}

	if err := s.streamRepo.Update(ctx, *stream); err != nil {
		return nil, NewBusinessError("STREAM_UPDATE_FAILED", "Stream update failed", err)
	}

	// Moving campaigns leaves the stream indexed under the old parent
	// set unless it is dropped first.
	if stream.CampaignID != oldCampaignID {
		s.entityCache.DeleteStream(ctx, stream.ID, oldCampaignID)
	}
	s.entityCache.SetStream(ctx, stream)

	resp := ToStreamDTO(*stream)
	return &resp, nil
}

// DeleteStream removes the stream from the record store (its filters go
// with it via ON DELETE CASCADE) and cascades the cache eviction.
func (s *StreamFlowImpl) DeleteStream(ctx context.Context, id uint) error {
	stream, err := s.streamRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("STREAM_LOOKUP_FAILED", "Failed to lookup stream", err)
	}
	if stream == nil {
		return NewBusinessError("STREAM_NOT_FOUND", "Stream not found", ErrStreamNotFound)
	}

	if err := s.streamRepo.Delete(ctx, id); err != nil {
		return NewBusinessError("STREAM_DELETION_FAILED", "Stream deletion failed", err)
	}

	s.entityCache.CascadeDeleteStream(ctx, id, stream.CampaignID)

	return nil
}

func validateStreamInput(name, targetURL string, status *string, weight *int) error {
	if strings.TrimSpace(name) == "" {
		return NewBusinessError("STREAM_VALIDATION_FAILED", "Stream name is required", ErrStreamNameRequired)
	}
	if strings.TrimSpace(targetURL) == "" {
		return NewBusinessError("STREAM_VALIDATION_FAILED", "Stream target URL is required", ErrTargetURLRequired)
	}
	if status != nil && !models.CampaignStatus(*status).Valid() {
		return NewBusinessError("STREAM_VALIDATION_FAILED", "Invalid stream status", ErrInvalidCampaignStatus)
	}
	if weight != nil && *weight <= 0 {
		return NewBusinessError("STREAM_VALIDATION_FAILED", "Invalid stream weight", ErrInvalidStreamWeight)
	}
	return nil
}

// cacheStreamTree repopulates the cache entries for a stream loaded
// with its filters.
func (s *StreamFlowImpl) cacheStreamTree(ctx context.Context, stream *models.Stream) {
	s.entityCache.SetStream(ctx, stream)
	for i := range stream.Filters {
		s.entityCache.SetFilter(ctx, &stream.Filters[i])
	}
}
