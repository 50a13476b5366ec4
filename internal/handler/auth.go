package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecorueda/internal/domain"
	"ecorueda/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest is the HTTP request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the HTTP request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UserResponse is the HTTP representation of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	Balance       float64 `json:"balance"`
	Role          string  `json:"role"`
	EmailVerified bool    `json:"email_verified"`
}

// AuthResponse pairs a user with a fresh token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Phone:         u.Phone,
		Balance:       u.Balance,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
	}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, AuthResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, AuthResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// ChangePassword handles POST /v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"updated": true})
}
