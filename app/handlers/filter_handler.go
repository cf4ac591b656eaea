package handlers

import (
	"log"

	"github.com/trafficden/trafficden/app/dto"
	businessflow "github.com/trafficden/trafficden/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// FilterHandlerInterface defines the contract for filter handlers
type FilterHandlerInterface interface {
	CreateFilter(c fiber.Ctx) error
	GetFilter(c fiber.Ctx) error
	ListFilters(c fiber.Ctx) error
	UpdateFilter(c fiber.Ctx) error
	DeleteFilter(c fiber.Ctx) error
}

// FilterHandler handles filter-related HTTP requests
type FilterHandler struct {
	filterFlow businessflow.FilterFlow
	validator  *validator.Validate
}

// NewFilterHandler creates a new filter handler
func NewFilterHandler(filterFlow businessflow.FilterFlow) *FilterHandler {
	return &FilterHandler{
		filterFlow: filterFlow,
		validator:  validator.New(),
	}
}

func (h *FilterHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *FilterHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateFilter handles the filter creation process
func (h *FilterHandler) CreateFilter(c fiber.Ctx) error {
	var req dto.CreateFilterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.filterFlow.CreateFilter(createRequestContext(c, "/api/v1/filters"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsStreamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Stream not found", "STREAM_NOT_FOUND", nil)
		}

		log.Println("Filter creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Filter creation failed", "FILTER_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Filter created successfully", result)
}

// GetFilter returns a single filter
func (h *FilterHandler) GetFilter(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter ID", "INVALID_FILTER_ID", err.Error())
	}

	result, err := h.filterFlow.GetFilter(createRequestContext(c, "/api/v1/filters/:id"), id)
	if err != nil {
		if businessflow.IsFilterNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Filter not found", "FILTER_NOT_FOUND", nil)
		}

		log.Println("Filter retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Filter retrieval failed", "FILTER_RETRIEVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Filter retrieved successfully", result)
}

// ListFilters returns the filters of a stream
func (h *FilterHandler) ListFilters(c fiber.Ctx) error {
	streamID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stream ID", "INVALID_STREAM_ID", err.Error())
	}

	result, err := h.filterFlow.ListFilters(createRequestContext(c, "/api/v1/streams/:id/filters"), streamID)
	if err != nil {
		if businessflow.IsStreamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Stream not found", "STREAM_NOT_FOUND", nil)
		}

		log.Println("List filters failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list filters", "LIST_FILTERS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Filters retrieved successfully", result)
}

// UpdateFilter handles the filter update process
func (h *FilterHandler) UpdateFilter(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter ID", "INVALID_FILTER_ID", err.Error())
	}

	var req dto.UpdateFilterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.filterFlow.UpdateFilter(createRequestContext(c, "/api/v1/filters/:id"), id, &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsFilterNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Filter not found", "FILTER_NOT_FOUND", nil)
		}
		if businessflow.IsStreamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Stream not found", "STREAM_NOT_FOUND", nil)
		}

		log.Println("Filter update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Filter update failed", "FILTER_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Filter updated successfully", result)
}

// DeleteFilter handles the filter deletion process
func (h *FilterHandler) DeleteFilter(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filter ID", "INVALID_FILTER_ID", err.Error())
	}

	if err := h.filterFlow.DeleteFilter(createRequestContext(c, "/api/v1/filters/:id"), id); err != nil {
		if businessflow.IsFilterNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Filter not found", "FILTER_NOT_FOUND", nil)
		}

		log.Println("Filter deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Filter deletion failed", "FILTER_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Filter deleted successfully", nil)
}
