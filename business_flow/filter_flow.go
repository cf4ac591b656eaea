package businessflow

import (
	"context"
	"strings"

	"github.com/trafficden/trafficden/app/dto"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/models"
	"github.com/trafficden/trafficden/repository"
)

// FilterFlow handles the filter business logic
type FilterFlow interface {
	CreateFilter(ctx context.Context, req *dto.CreateFilterRequest) (*dto.FilterDTO, error)
	GetFilter(ctx context.Context, id uint) (*dto.FilterDTO, error)
	ListFilters(ctx context.Context, streamID uint) (*dto.ListFiltersResponse, error)
	UpdateFilter(ctx context.Context, id uint, req *dto.UpdateFilterRequest) (*dto.FilterDTO, error)
	DeleteFilter(ctx context.Context, id uint) error
}

// FilterFlowImpl implements the filter business flow
type FilterFlowImpl struct {
	filterRepo  repository.FilterRepository
	streamRepo  repository.StreamRepository
	entityCache *cache.EntityCache
}

// NewFilterFlow creates a new filter flow instance
func NewFilterFlow(
	filterRepo repository.FilterRepository,
	streamRepo repository.StreamRepository,
	entityCache *cache.EntityCache,
) FilterFlow {
	return &FilterFlowImpl{
		filterRepo:  filterRepo,
		streamRepo:  streamRepo,
		entityCache: entityCache,
	}
}

// CreateFilter creates a filter under an existing stream.
func (s *FilterFlowImpl) CreateFilter(ctx context.Context, req *dto.CreateFilterRequest) (*dto.FilterDTO, error) {
	if err := validateFilterInput(req.Type, req.Operation, req.Value); err != nil {
		return nil, err
	}

	stream, err := s.streamRepo.ByID(ctx, req.StreamID)
	if err != nil {
		return nil, NewBusinessError("STREAM_LOOKUP_FAILED", "Failed to lookup stream", err)
	}
	if stream == nil {
		return nil, NewBusinessError("STREAM_NOT_FOUND", "Stream not found", ErrStreamNotFound)
	}

	filter := models.Filter{
		StreamID:  req.StreamID,
		Type:      models.FilterType(req.Type),
		Operation: models.FilterOperation(req.Operation),
		Value:     req.Value,
	}

	if err := s.filterRepo.Save(ctx, &filter); err != nil {
		return nil, NewBusinessError("FILTER_CREATION_FAILED", "Filter creation failed", err)
	}

	s.entityCache.SetFilter(ctx, &filter)

	resp := ToFilterDTO(filter)
	return &resp, nil
}

// GetFilter returns the filter, cache first.
func (s *FilterFlowImpl) GetFilter(ctx context.Context, id uint) (*dto.FilterDTO, error) {
	if cached := s.entityCache.GetFilter(ctx, id); cached != nil {
		resp := ToFilterDTO(*cached)
		return &resp, nil
	}

	filter, err := s.filterRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("FILTER_LOOKUP_FAILED", "Failed to lookup filter", err)
	}
	if filter == nil {
		return nil, NewBusinessError("FILTER_NOT_FOUND", "Filter not found", ErrFilterNotFound)
	}

	s.entityCache.SetFilter(ctx, filter)

	resp := ToFilterDTO(*filter)
	return &resp, nil
}

// ListFilters returns the filters of a stream from the record store.
func (s *FilterFlowImpl) ListFilters(ctx context.Context, streamID uint) (*dto.ListFiltersResponse, error) {
	stream, err := s.streamRepo.ByID(ctx, streamID)
	if err != nil {
		return nil, NewBusinessError("STREAM_LOOKUP_FAILED", "Failed to lookup stream", err)
	}
	if stream == nil {
		return nil, NewBusinessError("STREAM_NOT_FOUND", "Stream not found", ErrStreamNotFound)
	}

	filters, err := s.filterRepo.ByStreamID(ctx, streamID)
	if err != nil {
		return nil, NewBusinessError("FILTER_LIST_FAILED", "Failed to list filters", err)
	}

	resp := &dto.ListFiltersResponse{
		Filters: make([]dto.FilterDTO, 0, len(filters)),
		Total:   int64(len(filters)),
	}
	for _, filter := range filters {
		resp.Filters = append(resp.Filters, ToFilterDTO(*filter))
	}

	return resp, nil
}

// UpdateFilter applies a partial update. Moving a filter to another
// stream re-indexes it under the new parent in the cache.
func (s *FilterFlowImpl) UpdateFilter(ctx context.Context, id uint, req *dto.UpdateFilterRequest) (*dto.FilterDTO, error) {
	filter, err := s.filterRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("FILTER_LOOKUP_FAILED", "Failed to lookup filter", err)
	}
	if filter == nil {
		return nil, NewBusinessError("FILTER_NOT_FOUND", "Filter not found", ErrFilterNotFound)
	}

	oldStreamID := filter.StreamID

	filterType, operation, value := string(filter.Type), string(filter.Operation), filter.Value
	if req.Type != nil {
		filterType = *req.Type
	}
	if req.Operation != nil {
		operation = *req.Operation
	}
	if req.Value != nil {
		value = *req.Value
	}
	if err := validateFilterInput(filterType, operation, value); err != nil {
		return nil, err
	}

	if req.StreamID != nil && *req.StreamID != filter.StreamID {
		stream, err := s.streamRepo.ByID(ctx, *req.StreamID)
		if err != nil {
			return nil, NewBusinessError("STREAM_LOOKUP_FAILED", "Failed to lookup stream", err)
		}
		if stream == nil {
			return nil, NewBusinessError("STREAM_NOT_FOUND", "Stream not found", ErrStreamNotFound)
		}
		filter.StreamID = *req.StreamID
	}

	if req.Type != nil {
		filter.Type = models.FilterType(*req.Type)
	}
	if req.Operation != nil {
		filter.Operation = models.FilterOperation(*req.Operation)
	}
	if req.Value != nil {
		filter.Value = *req.Value
	}

	if err := s.filterRepo.Update(ctx, *filter); err != nil {
		return nil, NewBusinessError("FILTER_UPDATE_FAILED", "Filter update failed", err)
	}

	if filter.StreamID != oldStreamID {
		s.entityCache.DeleteFilter(ctx, filter.ID, oldStreamID)
	}
	s.entityCache.SetFilter(ctx, filter)

	resp := ToFilterDTO(*filter)
	return &resp, nil
}

func validateFilterInput(filterType, operation, value string) error {
	if !models.FilterType(filterType).Valid() {
		return NewBusinessError("FILTER_VALIDATION_FAILED", "Invalid filter type", ErrInvalidFilterType)
	}
	if !models.FilterOperation(operation).Valid() {
		return NewBusinessError("FILTER_VALIDATION_FAILED", "Invalid filter operation", ErrInvalidFilterOperation)
	}
	if strings.TrimSpace(value) == "" {
		return NewBusinessError("FILTER_VALIDATION_FAILED", "Filter value is required", ErrFilterValueRequired)
	}
	return nil
}

// DeleteFilter removes the filter from the record store and evicts it.
func (s *FilterFlowImpl) DeleteFilter(ctx context.Context, id uint) error {
	filter, err := s.filterRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("FILTER_LOOKUP_FAILED", "Failed to lookup filter", err)
	}
	if filter == nil {
		return NewBusinessError("FILTER_NOT_FOUND", "Filter not found", ErrFilterNotFound)
	}

	if err := s.filterRepo.Delete(ctx, id); err != nil {
		return NewBusinessError("FILTER_DELETION_FAILED", "Filter deletion failed", err)
	}

	s.entityCache.DeleteFilter(ctx, id, filter.StreamID)

	return nil
}
