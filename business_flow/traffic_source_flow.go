package businessflow

import (
	"context"
	"strings"

	"github.com/trafficden/trafficden/app/dto"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/repository"
)

// TrafficSourceFlow handles the traffic source business logic
type TrafficSourceFlow interface {
	CreateTrafficSource(ctx context.Context, req *dto.CreateTrafficSourceRequest) (*dto.TrafficSourceDTO, error)
	GetTrafficSource(ctx context.Context, id uint) (*dto.TrafficSourceDTO, error)
	ListTrafficSources(ctx context.Context) (*dto.ListTrafficSourcesResponse, error)
	UpdateTrafficSource(ctx context.Context, id uint, req *dto.UpdateTrafficSourceRequest) (*dto.TrafficSourceDTO, error)
	DeleteTrafficSource(ctx context.Context, id uint) error
	GetQueryParams(ctx context.Context, id uint) (map[string]string, error)
}

// TrafficSourceFlowImpl implements the traffic source business flow.
// Traffic sources are cached as standalone entries; they take no part
// in the campaign cascade.
type TrafficSourceFlowImpl struct {
	trafficSourceRepo repository.TrafficSourceRepository
	entityCache       *cache.EntityCache
}

// NewTrafficSourceFlow creates a new traffic source flow instance
func NewTrafficSourceFlow(
	trafficSourceRepo repository.TrafficSourceRepository,
	entityCache *cache.EntityCache,
) TrafficSourceFlow {
	return &TrafficSourceFlowImpl{
		trafficSourceRepo: trafficSourceRepo,
		entityCache:       entityCache,
	}
}

// CreateTrafficSource creates a traffic source.
func (s *TrafficSourceFlowImpl) CreateTrafficSource(ctx context.Context, req *dto.CreateTrafficSourceRequest) (*dto.TrafficSourceDTO, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("TRAFFIC_SOURCE_VALIDATION_FAILED", "Traffic source name is required", ErrSourceNameRequired)
	}

	source := models.TrafficSource{
		Name:        req.Name,
		QueryParams: req.QueryParams,
	}
	if req.Custom != nil {
		source.Custom = *req.Custom
	}

	if err := s.trafficSourceRepo.Save(ctx, &source); err != nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_CREATION_FAILED", "Traffic source creation failed", err)
	}

	s.entityCache.SetTrafficSource(ctx, &source)

	resp := ToTrafficSourceDTO(source)
	return &resp, nil
}

// GetTrafficSource returns the traffic source, cache first.
func (s *TrafficSourceFlowImpl) GetTrafficSource(ctx context.Context, id uint) (*dto.TrafficSourceDTO, error) {
	if cached := s.entityCache.GetTrafficSource(ctx, id); cached != nil {
		resp := ToTrafficSourceDTO(*cached)
		return &resp, nil
	}

	source, err := s.trafficSourceRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_LOOKUP_FAILED", "Failed to lookup traffic source", err)
	}
	if source == nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_NOT_FOUND", "Traffic source not found", ErrTrafficSourceNotFound)
	}

	s.entityCache.SetTrafficSource(ctx, source)

	resp := ToTrafficSourceDTO(*source)
	return &resp, nil
}

// ListTrafficSources returns all traffic sources from the record store.
func (s *TrafficSourceFlowImpl) ListTrafficSources(ctx context.Context) (*dto.ListTrafficSourcesResponse, error) {
	sources, err := s.trafficSourceRepo.ByFilter(ctx, models.TrafficSourceFilter{}, "id ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_LIST_FAILED", "Failed to list traffic sources", err)
	}

	resp := &dto.ListTrafficSourcesResponse{
		TrafficSources: make([]dto.TrafficSourceDTO, 0, len(sources)),
		Total:          int64(len(sources)),
	}
	for _, source := range sources {
		resp.TrafficSources = append(resp.TrafficSources, ToTrafficSourceDTO(*source))
	}

	return resp, nil
}

// UpdateTrafficSource applies a partial update.
func (s *TrafficSourceFlowImpl) UpdateTrafficSource(ctx context.Context, id uint, req *dto.UpdateTrafficSourceRequest) (*dto.TrafficSourceDTO, error) {
	source, err := s.trafficSourceRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_LOOKUP_FAILED", "Failed to lookup traffic source", err)
	}
	if source == nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_NOT_FOUND", "Traffic source not found", ErrTrafficSourceNotFound)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, NewBusinessError("TRAFFIC_SOURCE_VALIDATION_FAILED", "Traffic source name is required", ErrSourceNameRequired)
		}
		source.Name = *req.Name
	}
	if req.QueryParams != nil {
		source.QueryParams = req.QueryParams
	}
	if req.Custom != nil {
		source.Custom = *req.Custom
	}

	if err := s.trafficSourceRepo.Update(ctx, *source); err != nil {
		return nil, NewBusinessError("TRAFFIC_SOURCE_UPDATE_FAILED", "Traffic source update failed", err)
	}

	s.entityCache.SetTrafficSource(ctx, source)

	resp := ToTrafficSourceDTO(*source)
	return &resp, nil
}

// GetQueryParams returns the query parameter template of the source,
// the placeholder map used to build tracking URLs.
func (s *TrafficSourceFlowImpl) GetQueryParams(ctx context.Context, id uint) (map[string]string, error) {
	source, err := s.GetTrafficSource(ctx, id)
	if err != nil {
		return nil, err
	}
	return source.QueryParams, nil
}

// DeleteTrafficSource removes the traffic source and evicts it.
// Campaigns referencing it keep working; their traffic_source_id is set
// to NULL by the store.
func (s *TrafficSourceFlowImpl) DeleteTrafficSource(ctx context.Context, id uint) error {
	source, err := s.trafficSourceRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("TRAFFIC_SOURCE_LOOKUP_FAILED", "Failed to lookup traffic source", err)
	}
	if source == nil {
		return NewBusinessError("TRAFFIC_SOURCE_NOT_FOUND", "Traffic source not found", ErrTrafficSourceNotFound)
	}

	if err := s.trafficSourceRepo.Delete(ctx, id); err != nil {
		return NewBusinessError("TRAFFIC_SOURCE_DELETION_FAILED", "Traffic source deletion failed", err)
	}

	s.entityCache.DeleteTrafficSource(ctx, id)

	return nil
}
