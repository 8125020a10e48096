package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/prize-redemption-service/internal/service"
)

const msgInternalError = "internal server error"

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// statusFor maps service errors to HTTP status codes.
// The second result is false for errors that have no client-facing meaning.
func statusFor(err error) (int, bool) {
	switch {
	case service.IsNotFound(err):
		return fiber.StatusNotFound, true
	case errors.Is(err, service.ErrAlreadyRedeemed), errors.Is(err, service.ErrPrizeExists):
		return fiber.StatusConflict, true
	case service.IsValidation(err):
		return fiber.StatusBadRequest, true
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, true
	case errors.Is(err, service.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, false
	default:
		return fiber.StatusInternalServerError, false
	}
}

// messageFor returns the client-facing text for a known service error.
func messageFor(err error) string {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		return service.MsgCouponNotFound
	case errors.Is(err, service.ErrAlreadyRedeemed):
		return service.MsgAlreadyRedeemed
	case errors.Is(err, service.ErrPrizeNotFound):
		return "prize not found"
	case errors.Is(err, service.ErrSettingsNotFound):
		return "settings not found"
	case errors.Is(err, service.ErrPrizeExists):
		return "prize already exists"
	case errors.Is(err, service.ErrPrizeInactive):
		return "prize is not active"
	case errors.Is(err, service.ErrDuplicateCode):
		return "duplicate coupon code"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid username or password"
	case errors.Is(err, service.ErrInvalidRequest):
		// Service messages read "invalid request: <detail>" after the op prefixes.
		msg := err.Error()
		if i := strings.Index(msg, service.ErrInvalidRequest.Error()); i >= 0 {
			return msg[i:]
		}
		return service.ErrInvalidRequest.Error()
	default:
		return msgInternalError
	}
}

// serviceError writes the JSON error for err. Store and unexpected failures are logged
// through event, which the caller has already decorated with request fields.
func serviceError(c *fiber.Ctx, err error, event *zerolog.Event, msg string) error {
	status, known := statusFor(err)
	if known {
		event.Discard()
		return errorJSON(c, status, messageFor(err))
	}

	event.Err(err).Msg(msg)
	if status == fiber.StatusServiceUnavailable {
		return errorJSON(c, status, "service temporarily unavailable")
	}
	return errorJSON(c, status, msgInternalError)
}

// logError starts an error log line tagged with the request id.
func logError(c *fiber.Ctx) *zerolog.Event {
	return log.Error().Str("request_id", requestID(c))
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

// formatValidationError converts validator errors to a client message naming the first bad field.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return "invalid request: " + field + " is required"
	case "notblank":
		return "invalid request: " + field + " cannot be whitespace only"
	case "max":
		return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
	case "gte":
		return "invalid request: " + field + " must be at least " + fe.Param()
	case "lte":
		return "invalid request: " + field + " must be at most " + fe.Param()
	case "couponcode":
		return "invalid request: " + field + " may only contain letters, digits, '-' and '_'"
	case "alphanum":
		return "invalid request: " + field + " must be alphanumeric"
	case "email":
		return "invalid request: " + field + " must be a valid email address"
	case "url":
		return "invalid request: " + field + " must be a valid URL"
	case "gtefield":
		return "invalid request: " + field + " must not be before " + jsonFieldName(fe.Param())
	default:
		return "invalid request: " + field + " is invalid"
	}
}

// jsonFieldName turns a Go field name like StartDate into start_date.
func jsonFieldName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
