package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Error is the body of every failed response.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// NewError creates an API error.
func NewError(code int, msg string) Error {
	return Error{Code: code, Message: msg}
}

// ErrBadRequest is returned for bodies that are not valid JSON.
func ErrBadRequest() Error {
	return NewError(fiber.StatusBadRequest, "invalid JSON request")
}

// ErrNoQuestion is returned when the question is missing or blank.
func ErrNoQuestion() Error {
	return NewError(fiber.StatusBadRequest, "No question provided")
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidFilter):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrIndexUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrEmbedding), errors.Is(err, domain.ErrGeneration):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders every error as {"error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &fiberErr):
		apiErr = NewError(fiberErr.Code, fiberErr.Message)
	default:
		apiErr = NewError(statusFor(err), err.Error())
	}

	if apiErr.Code >= fiber.StatusInternalServerError {
		logger.Error("%s %s failed with %d: %s", c.Method(), c.Path(), apiErr.Code, apiErr.Message)
	} else {
		logger.Debug("%s %s failed with %d: %s", c.Method(), c.Path(), apiErr.Code, apiErr.Message)
	}
	return c.Status(apiErr.Code).JSON(apiErr)
}
