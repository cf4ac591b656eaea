// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Not-found errors: entity absent from the record store after a
	// cache miss. Always distinct and recoverable for the caller.
	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrStreamNotFound        = errors.New("stream not found")
	ErrFilterNotFound        = errors.New("filter not found")
	ErrTrafficSourceNotFound = errors.New("traffic source not found")

	// Uniqueness conflict: never merged with not-found.
	ErrCampaignCodeExists = errors.New("campaign code already exists")

	// Validation errors
	ErrCampaignNameRequired   = errors.New("campaign name is required")
	ErrInvalidCampaignCode    = errors.New("campaign code must be 5 characters of A-Z or 2-7")
	ErrInvalidCampaignStatus  = errors.New("campaign status must be active or inactive")
	ErrInvalidCurrency        = errors.New("currency is not supported")
	ErrStreamNameRequired     = errors.New("stream name is required")
	ErrTargetURLRequired      = errors.New("stream target url is required")
	ErrInvalidStreamWeight    = errors.New("stream weight must be a positive integer")
	ErrInvalidFilterType      = errors.New("filter type is not supported")
	ErrInvalidFilterOperation = errors.New("filter operation is not supported")
	ErrFilterValueRequired    = errors.New("filter value is required")
	ErrSourceNameRequired     = errors.New("traffic source name is required")
)

// IsCampaignNotFound checks if the error is a campaign not found error
func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

// IsStreamNotFound checks if the error is a stream not found error
func IsStreamNotFound(err error) bool {
	return errors.Is(err, ErrStreamNotFound)
}

// IsFilterNotFound checks if the error is a filter not found error
func IsFilterNotFound(err error) bool {
	return errors.Is(err, ErrFilterNotFound)
}

// IsTrafficSourceNotFound checks if the error is a traffic source not found error
func IsTrafficSourceNotFound(err error) bool {
	return errors.Is(err, ErrTrafficSourceNotFound)
}

// IsCampaignCodeExists checks if the error is a campaign code conflict
func IsCampaignCodeExists(err error) bool {
	return errors.Is(err, ErrCampaignCodeExists)
}

// IsValidationError checks if the error wraps one of the input
// validation sentinels
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrCampaignNameRequired,
		ErrInvalidCampaignCode,
		ErrInvalidCampaignStatus,
		ErrInvalidCurrency,
		ErrStreamNameRequired,
		ErrTargetURLRequired,
		ErrInvalidStreamWeight,
		ErrInvalidFilterType,
		ErrInvalidFilterOperation,
		ErrFilterValueRequired,
		ErrSourceNameRequired,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
