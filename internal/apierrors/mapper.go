package apierrors

import (
	"errors"
	"strings"

	"crm-server/internal/audience"
	"crm-server/internal/campaign/lifecycle"
	campaignProcessor "crm-server/internal/campaign/processor"
	"crm-server/internal/dispatch"
	"crm-server/internal/store"
)

// MapError converts domain/processor errors to APIErrors.
// This function centralizes all error mapping logic to ensure consistent
// error responses across the entire API.
//
// If the error is already an APIError, it returns it as-is.
// If the error is a known domain error, it maps it to an appropriate APIError.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	// Check if already an APIError
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	// Not found
	case errors.Is(err, audience.ErrCampaignNotFound),
		errors.Is(err, campaignProcessor.ErrCampaignNotFound):
		return NotFound(CodeCampaignNotFound, "Campaign not found")

	case errors.Is(err, store.ErrNotFound):
		return NotFound(CodeNotFound, "Resource not found")

	// Validation is checked first: unknown operator actions wrap both sentinels
	case errors.Is(err, campaignProcessor.ErrValidation):
		return BadRequest(CodeInvalidInput, publicMessage(err))

	// Invalid state
	case errors.Is(err, audience.ErrInvalidState),
		errors.Is(err, campaignProcessor.ErrInvalidState),
		errors.Is(err, lifecycle.ErrInvalidTransition),
		errors.Is(err, store.ErrStatusConflict):
		return BadRequest(CodeInvalidState, publicMessage(err))

	// Storage
	case errors.Is(err, audience.ErrStorage),
		errors.Is(err, campaignProcessor.ErrStorage),
		errors.Is(err, dispatch.ErrStorage):
		return StorageError(err)

	// Gateway failures are recorded per recipient; reaching here is unexpected
	case errors.Is(err, dispatch.ErrGateway):
		return ServiceUnavailable(CodeGatewayError, "Messaging gateway is temporarily unavailable. Please try again later.", err)

	// Check for common external service errors by message content
	default:
		return mapExternalServiceError(err)
	}
}

// publicMessage exposes domain error text, which never carries storage or gateway detail.
func publicMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Invalid request"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// mapExternalServiceError attempts to identify external service errors
// and map them to appropriate service-specific error responses.
func mapExternalServiceError(err error) *APIError {
	errMsg := strings.ToLower(err.Error())

	// Email service errors (Resend)
	if strings.Contains(errMsg, "resend") || strings.Contains(errMsg, "email service") {
		return ServiceUnavailable(
			CodeEmailServiceError,
			"Email service is temporarily unavailable. Please try again later.",
			err,
		)
	}

	// Default: Unknown error - return sanitized 500
	return InternalError(err)
}
