package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/repository"
	"ecorueda/internal/service"
)

// envelope is the response body wrapper used by every endpoint.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp"`
}

// paginatedEnvelope adds page metadata to a list response.
type paginatedEnvelope struct {
	Success    bool       `json:"success"`
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
	Timestamp  string     `json:"timestamp"`
}

type pagination struct {
	Total int `json:"total"`
	Pages int `json:"pages"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// respondData sends a success envelope with the given status code.
func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, envelope{Success: true, Data: data, Timestamp: timestamp()})
}

// respondPaginated sends a success envelope with page metadata.
func respondPaginated(c *gin.Context, data any, p pagination) {
	c.JSON(http.StatusOK, paginatedEnvelope{
		Success:    true,
		Data:       data,
		Pagination: p,
		Timestamp:  timestamp(),
	})
}

// respondError sends an error envelope with the mapped HTTP status code.
func respondError(c *gin.Context, err error) {
	c.JSON(mapErrorToHTTPStatus(err), envelope{
		Success:   false,
		Message:   err.Error(),
		Timestamp: timestamp(),
	})
}

// respondBadRequest sends a validation error envelope.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success:   false,
		Message:   message,
		Timestamp: timestamp(),
	})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
// Business-rule violations come back as 400, missing entities as 404.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNotTripOwner),
		errors.Is(err, service.ErrNotMethodOwner):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInvalidCompany),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidBattery),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrOutsideServiceArea),
		errors.Is(err, service.ErrVehicleExistsAtLocation),
		errors.Is(err, service.ErrVehicleNotAvailable),
		errors.Is(err, service.ErrVehicleNotInUse),
		errors.Is(err, service.ErrVehicleInUse),
		errors.Is(err, service.ErrActiveTripExists),
		errors.Is(err, service.ErrNoActiveTrip),
		errors.Is(err, service.ErrDuplicatePaymentMethod):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// userID returns the authenticated user's ID from the gin context.
func userID(c *gin.Context) string {
	return c.GetString("userID")
}
