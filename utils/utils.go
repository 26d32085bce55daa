package utils

import (
	"fmt"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

// Error codes surfaced to clients so the UI can distinguish "crew is full"
// from a generic rejection.
const (
	CodeValidation    = "validation"
	CodeUnauthorized  = "unauthorized"
	CodeForbidden     = "forbidden"
	CodeNotFound      = "not_found"
	CodeStateConflict = "state_conflict"
	CodeCrewFull      = "crew_full"
	CodeAlreadyExists = "already_exists"
	CodeInternal      = "internal"
)

// GenerateRateLimitKey creates a unique key for rate limiting
func GenerateRateLimitKey(userID uint, targetID, path string) string {
	return fmt.Sprintf("rl:%d:%s:%s", userID, targetID, path)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, code, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"code":    code,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	if status >= fiber.StatusInternalServerError && err != nil {
		sentry.CaptureException(err)
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}
