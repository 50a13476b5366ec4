package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/service"
)

// UserHandler handles HTTP requests for profiles and the wallet.
type UserHandler struct {
	walletService *service.WalletService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(walletService *service.WalletService) *UserHandler {
	return &UserHandler{walletService: walletService}
}

// UpdateProfileRequest is the HTTP request body for a profile update.
type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

// RechargeRequest is the HTTP request body for a wallet recharge.
type RechargeRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// WalletResponse is the HTTP representation of a user's wallet.
type WalletResponse struct {
	Balance float64 `json:"balance"`
}

// GetProfile handles GET /v1/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.walletService.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /v1/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.walletService.UpdateProfile(c.Request.Context(), userID(c), req.Name, req.Phone)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, toUserResponse(user))
}

// GetWallet handles GET /v1/profile/wallet
func (h *UserHandler) GetWallet(c *gin.Context) {
	balance, err := h.walletService.Balance(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, WalletResponse{Balance: balance})
}

// Recharge handles POST /v1/profile/wallet/recharge
func (h *UserHandler) Recharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	balance, err := h.walletService.Credit(c.Request.Context(), userID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, WalletResponse{Balance: balance})
}
