package handlers

import (
	"log"

	"github.com/trafficden/trafficden/app/dto"
	businessflow "github.com/trafficden/trafficden/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// StreamHandlerInterface defines the contract for stream handlers
type StreamHandlerInterface interface {
	CreateStream(c fiber.Ctx) error
	GetStream(c fiber.Ctx) error
	ListStreams(c fiber.Ctx) error
	UpdateStream(c fiber.Ctx) error
	DeleteStream(c fiber.Ctx) error
}

// StreamHandler handles stream-related HTTP requests
type StreamHandler struct {
	streamFlow businessflow.StreamFlow
	validator  *validator.Validate
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(streamFlow businessflow.StreamFlow) *StreamHandler {
	return &StreamHandler{
		streamFlow: streamFlow,
		validator:  validator.New(),
	}
}

func (h *StreamHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *StreamHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateStream handles the stream creation process
func (h *StreamHandler) CreateStream(c fiber.Ctx) error {
	var req dto.CreateStreamRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.streamFlow.CreateStream(createRequestContext(c, "/api/v1/streams"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}

		log.Println("Stream creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stream creation failed", "STREAM_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Stream created successfully", result)
}

// GetStream returns a stream with its filters
func (h *StreamHandler) GetStream(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stream ID", "INVALID_STREAM_ID", err.Error())
	}

	result, err := h.streamFlow.GetStream(createRequestContext(c, "/api/v1/streams/:id"), id)
	if err != nil {
		if businessflow.IsStreamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Stream not found", "STREAM_NOT_FOUND", nil)
		}

		log.Println("Stream retrieval failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stream retrieval failed", "STREAM_RETRIEVAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stream retrieved successfully", result)
}

// ListStreams returns the streams of a campaign
func (h *StreamHandler) ListStreams(c fiber.Ctx) error {
	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_CAMPAIGN_ID", err.Error())
	}

	result, err := h.streamFlow.ListStreams(createRequestContext(c, "/api/v1/campaigns/:id/streams"), campaignID)
	if err != nil {
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}

		log.Println("List streams failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list streams", "LIST_STREAMS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Streams retrieved successfully", result)
}

// UpdateStream handles the stream update process
func (h *StreamHandler) UpdateStream(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stream ID", "INVALID_STREAM_ID", err.Error())
	}

	var req dto.UpdateStreamRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorMessages(err))
	}

	result, err := h.streamFlow.UpdateStream(createRequestContext(c, "/api/v1/streams/:id"), id, &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		if businessflow.IsStreamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Stream not found", "STREAM_NOT_FOUND", nil)
		}
		if businessflow.IsCampaignNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
		}

		log.Println("Stream update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stream update failed", "STREAM_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stream updated successfully", result)
}

// DeleteStream handles the stream deletion process
func (h *StreamHandler) DeleteStream(c fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid stream ID", "INVALID_STREAM_ID", err.Error())
	}

	if err := h.streamFlow.DeleteStream(createRequestContext(c, "/api/v1/streams/:id"), id); err != nil {
		if businessflow.IsStreamNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Stream not found", "STREAM_NOT_FOUND", nil)
		}

		log.Println("Stream deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Stream deletion failed", "STREAM_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Stream deleted successfully", nil)
}
