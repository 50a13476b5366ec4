package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/domain"
	"ecorueda/internal/service"
)

// VehicleHandler handles HTTP requests for the vehicle inventory.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// CreateVehicleRequest is the HTTP request body for adding a vehicle.
type CreateVehicleRequest struct {
	Company     string  `json:"company" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Lat         float64 `json:"lat" binding:"required"`
	Lng         float64 `json:"lng" binding:"required"`
	Battery     *int    `json:"battery"`
	PricePerMin float64 `json:"price_per_min" binding:"required"`
}

// ReleaseVehicleRequest is the HTTP request body for releasing a vehicle.
type ReleaseVehicleRequest struct {
	Battery int     `json:"battery" binding:"min=0,max=100"`
	Lat     float64 `json:"lat" binding:"required"`
	Lng     float64 `json:"lng" binding:"required"`
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID          string  `json:"id"`
	Company     string  `json:"company"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Battery     int     `json:"battery"`
	PricePerMin float64 `json:"price_per_min"`
	Status      string  `json:"status"`
	Canton      string  `json:"canton,omitempty"`
	Distrito    string  `json:"distrito,omitempty"`
}

func toVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:          v.ID,
		Company:     string(v.Company),
		Type:        string(v.Type),
		Lat:         v.Lat,
		Lng:         v.Lng,
		Battery:     v.Battery,
		PricePerMin: v.PricePerMin,
		Status:      string(v.Status),
		Canton:      v.Canton,
		Distrito:    v.Distrito,
	}
}

func toVehicleResponses(vehicles []*domain.Vehicle) []VehicleResponse {
	responses := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, toVehicleResponse(v))
	}
	return responses
}

// Create handles POST /v1/vehicles
func (h *VehicleHandler) Create(c *gin.Context) {
	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), service.CreateVehicleRequest{
		Company:     domain.VehicleCompany(req.Company),
		Type:        domain.VehicleType(req.Type),
		Lat:         req.Lat,
		Lng:         req.Lng,
		Battery:     req.Battery,
		PricePerMin: req.PricePerMin,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetAll handles GET /v1/vehicles
func (h *VehicleHandler) GetAll(c *gin.Context) {
	vehicles, err := h.vehicleService.GetAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toVehicleResponses(vehicles))
}

// Search handles GET /v1/vehicles/search?lat&lng&radius&type&company
func (h *VehicleHandler) Search(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		respondBadRequest(c, "lat is required")
		return
	}

	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		respondBadRequest(c, "lng is required")
		return
	}

	radius := 1.0
	if raw := c.Query("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			respondBadRequest(c, "radius must be a number")
			return
		}
	}

	vehicles, err := h.vehicleService.SearchNearby(c.Request.Context(), lat, lng, radius, service.NearbyFilters{
		Type:    domain.VehicleType(c.Query("type")),
		Company: domain.VehicleCompany(c.Query("company")),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toVehicleResponses(vehicles))
}

// Get handles GET /v1/vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	vehicle, err := h.vehicleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toVehicleResponse(vehicle))
}

// Reserve handles POST /v1/vehicles/:id/reserve
func (h *VehicleHandler) Reserve(c *gin.Context) {
	vehicle, err := h.vehicleService.Reserve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toVehicleResponse(vehicle))
}

// Release handles POST /v1/vehicles/:id/release
func (h *VehicleHandler) Release(c *gin.Context) {
	var req ReleaseVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	vehicle, err := h.vehicleService.Release(c.Request.Context(), c.Param("id"), service.ReleaseRequest{
		Battery: req.Battery,
		Lat:     req.Lat,
		Lng:     req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toVehicleResponse(vehicle))
}

// Stats handles GET /v1/vehicles/stats
func (h *VehicleHandler) Stats(c *gin.Context) {
	stats, err := h.vehicleService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}
