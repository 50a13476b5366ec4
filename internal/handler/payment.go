package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/domain"
	"ecorueda/internal/service"
)

// PaymentHandler handles HTTP requests for stored payment methods.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// AddMethodRequest is the HTTP request body for storing a payment method.
type AddMethodRequest struct {
	CardLast4  string `json:"card_last4" binding:"required,len=4"`
	Provider   string `json:"provider" binding:"required"`
	MethodType string `json:"method_type"`
}

// MethodResponse is the HTTP representation of a payment method.
type MethodResponse struct {
	ID         string `json:"id"`
	CardLast4  string `json:"card_last4"`
	Provider   string `json:"provider"`
	MethodType string `json:"method_type"`
	IsDefault  bool   `json:"is_default"`
}

func toMethodResponse(m *domain.PaymentMethod) MethodResponse {
	return MethodResponse{
		ID:         m.ID,
		CardLast4:  m.CardLast4,
		Provider:   m.Provider,
		MethodType: string(m.MethodType),
		IsDefault:  m.IsDefault,
	}
}

// List handles GET /v1/payments
func (h *PaymentHandler) List(c *gin.Context) {
	methods, err := h.paymentService.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]MethodResponse, 0, len(methods))
	for _, m := range methods {
		responses = append(responses, toMethodResponse(m))
	}

	respondData(c, http.StatusOK, responses)
}

// Add handles POST /v1/payments
func (h *PaymentHandler) Add(c *gin.Context) {
	var req AddMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	method, err := h.paymentService.Add(c.Request.Context(), userID(c), service.AddMethodRequest{
		CardLast4:  req.CardLast4,
		Provider:   req.Provider,
		MethodType: domain.MethodType(req.MethodType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, toMethodResponse(method))
}

// SetDefault handles PUT /v1/payments/:id/default
func (h *PaymentHandler) SetDefault(c *gin.Context) {
	method, err := h.paymentService.SetDefault(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toMethodResponse(method))
}

// Delete handles DELETE /v1/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	if err := h.paymentService.Deactivate(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
