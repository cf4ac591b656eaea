package handlers

import (
	"log"

	"github.com/trafficden/trafficden/app/dto"
	businessflow "github.com/trafficden/trafficden/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// TrafficSourceHandlerInterface defines the contract for traffic source handlers
type TrafficSourceHandlerInterface interface {
	CreateTrafficSource(c fiber.Ctx) error
	GetTrafficSource(c fiber.Ctx) error
	ListTrafficSources(c fiber.Ctx) error
	UpdateTrafficSource(c fiber.Ctx) error
	DeleteTrafficSource(c fiber.Ctx) error
	GetQueryParams(c fiber.Ctx) error
}

// TrafficSourceHandler handles traffic source-related HTTP requests
type TrafficSourceHandler struct {
	trafficSourceFlow businessflow.TrafficSourceFlow
	validator         *validator.Validate
}

// NewTrafficSourceHandler creates a new traffic source handler
func NewTrafficSourceHandler(trafficSourceFlow businessflow.TrafficSourceFlow) *TrafficSourceHandler {
	return &TrafficSourceHandler{
		trafficSourceFlow: trafficSourceFlow,
		validator:         validator.New(),
	}
}

func (h *TrafficSourceHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TrafficSourceHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateTrafficSource handles the traffic source creation process
func (h *TrafficSourceHandler) CreateTrafficSource(c fiber.Ctx) error {
	var req dto.CreateTrafficSourceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.trafficSourceFlow.CreateTrafficSource(createRequestContext(c, "/api/v1/traffic-sources"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}

		log.Println("Traffic source creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Traffic source creation failed", "TRAFFIC_SOURCE_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Traffic source created successfully", result)
}

// GetTrafficSource returns a single traffic source
func (h *TrafficSourceHandler) GetTrafficSource(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid traffic source ID", "INVALID_TRAFFIC_SOURCE_ID", err.Error())
	}

	result, err := h.trafficSourceFlow.GetTrafficSource(createRequestContext(c, "/api/v1/traffic-sources/:id"), id)
	if err != nil {
		if businessflow.IsTrafficSourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Traffic source not found", "TRAFFIC_SOURCE_NOT_FOUND", nil)
		}

		log.Println("Traffic source retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Traffic source retrieval failed", "TRAFFIC_SOURCE_RETRIEVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Traffic source retrieved successfully", result)
}

// ListTrafficSources returns all traffic sources
func (h *TrafficSourceHandler) ListTrafficSources(c fiber.Ctx) error {
	result, err := h.trafficSourceFlow.ListTrafficSources(createRequestContext(c, "/api/v1/traffic-sources"))
	if err != nil {
		log.Println("List traffic sources failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list traffic sources", "LIST_TRAFFIC_SOURCES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Traffic sources retrieved successfully", result)
}

// GetQueryParams returns the query parameter template of a traffic source
func (h *TrafficSourceHandler) GetQueryParams(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid traffic source ID", "INVALID_TRAFFIC_SOURCE_ID", err.Error())
	}

	params, err := h.trafficSourceFlow.GetQueryParams(createRequestContext(c, "/api/v1/traffic-sources/:id/query-params"), id)
	if err != nil {
		if businessflow.IsTrafficSourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Traffic source not found", "TRAFFIC_SOURCE_NOT_FOUND", nil)
		}

		log.Println("Traffic source query params retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Traffic source retrieval failed", "TRAFFIC_SOURCE_RETRIEVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Query params retrieved successfully", params)
}

// UpdateTrafficSource handles the traffic source update process
func (h *TrafficSourceHandler) UpdateTrafficSource(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid traffic source ID", "INVALID_TRAFFIC_SOURCE_ID", err.Error())
	}

	var req dto.UpdateTrafficSourceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.trafficSourceFlow.UpdateTrafficSource(createRequestContext(c, "/api/v1/traffic-sources/:id"), id, &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsTrafficSourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Traffic source not found", "TRAFFIC_SOURCE_NOT_FOUND", nil)
		}

		log.Println("Traffic source update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Traffic source update failed", "TRAFFIC_SOURCE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Traffic source updated successfully", result)
}

// DeleteTrafficSource handles the traffic source deletion process
func (h *TrafficSourceHandler) DeleteTrafficSource(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid traffic source ID", "INVALID_TRAFFIC_SOURCE_ID", err.Error())
	}

	if err := h.trafficSourceFlow.DeleteTrafficSource(createRequestContext(c, "/api/v1/traffic-sources/:id"), id); err != nil {
		if businessflow.IsTrafficSourceNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Traffic source not found", "TRAFFIC_SOURCE_NOT_FOUND", nil)
		}

		log.Println("Traffic source deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Traffic source deletion failed", "TRAFFIC_SOURCE_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Traffic source deleted successfully", nil)
}
