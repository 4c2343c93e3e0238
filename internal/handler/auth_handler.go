package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/storefront_api/internal/service"
	"github.com/atelierhq/storefront_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AdminAuthService
}

func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	resp, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	utils.Success(c, http.StatusOK, "Login successful", resp)
}
