package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/domain"
	"ecorueda/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// StartTripRequest is the HTTP request body for starting a trip.
type StartTripRequest struct {
	VehicleID    string  `json:"vehicle_id"`
	StartLat     float64 `json:"start_lat"`
	StartLng     float64 `json:"start_lng"`
	StartAddress string  `json:"start_address"`
}

// FinishTripRequest is the HTTP request body for finishing a trip.
type FinishTripRequest struct {
	EndLat          float64 `json:"end_lat"`
	EndLng          float64 `json:"end_lng"`
	EndAddress      string  `json:"end_address"`
	DurationMinutes float64 `json:"duration_minutes"`
	Distance        float64 `json:"distance"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	VehicleID       string  `json:"vehicle_id,omitempty"`
	Status          string  `json:"status"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time,omitempty"`
	StartLat        float64 `json:"start_lat"`
	StartLng        float64 `json:"start_lng"`
	EndLat          float64 `json:"end_lat,omitempty"`
	EndLng          float64 `json:"end_lng,omitempty"`
	StartAddress    string  `json:"start_address,omitempty"`
	EndAddress      string  `json:"end_address,omitempty"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
	Distance        float64 `json:"distance,omitempty"`
	Price           float64 `json:"price"`
}

func toTripResponse(t *domain.Trip) TripResponse {
	response := TripResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		VehicleID:       t.VehicleID,
		Status:          string(t.Status),
		StartTime:       t.StartTime.Format(time.RFC3339),
		StartLat:        t.StartLat,
		StartLng:        t.StartLng,
		EndLat:          t.EndLat,
		EndLng:          t.EndLng,
		StartAddress:    t.StartAddress,
		EndAddress:      t.EndAddress,
		DurationMinutes: t.DurationMinutes,
		Distance:        t.Distance,
		Price:           t.Price,
	}

	if !t.EndTime.IsZero() {
		response.EndTime = t.EndTime.Format(time.RFC3339)
	}

	return response
}

// Start handles POST /v1/trips/start
func (h *TripHandler) Start(c *gin.Context) {
	var req StartTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	trip, err := h.tripService.StartTrip(c.Request.Context(), userID(c), service.StartTripRequest{
		VehicleID:    req.VehicleID,
		StartLat:     req.StartLat,
		StartLng:     req.StartLng,
		StartAddress: req.StartAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, toTripResponse(trip))
}

// Finish handles POST /v1/trips/finish
func (h *TripHandler) Finish(c *gin.Context) {
	var req FinishTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	trip, err := h.tripService.FinishTrip(c.Request.Context(), userID(c), service.FinishTripRequest{
		EndLat:          req.EndLat,
		EndLng:          req.EndLng,
		EndAddress:      req.EndAddress,
		DurationMinutes: req.DurationMinutes,
		Distance:        req.Distance,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toTripResponse(trip))
}

// Cancel handles POST /v1/trips/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	trip, err := h.tripService.CancelTrip(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toTripResponse(trip))
}

// Active handles GET /v1/trips/active. Responds 204 when no trip is ongoing.
func (h *TripHandler) Active(c *gin.Context) {
	trip, err := h.tripService.ActiveTrip(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if trip == nil {
		c.Status(http.StatusNoContent)
		return
	}

	respondData(c, http.StatusOK, toTripResponse(trip))
}

// History handles GET /v1/trips/history?page&limit
func (h *TripHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.tripService.History(c.Request.Context(), userID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	trips := make([]TripResponse, 0, len(result.Trips))
	for _, t := range result.Trips {
		trips = append(trips, toTripResponse(t))
	}

	respondPaginated(c, trips, pagination{
		Total: result.Total,
		Pages: result.Pages,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

// Stats handles GET /v1/trips/stats
func (h *TripHandler) Stats(c *gin.Context) {
	stats, err := h.tripService.Stats(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

// Get handles GET /v1/trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toTripResponse(trip))
}
