package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farm-credit/internal/service"
)

// AuthHandler emite tokens de operador para el historial.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{logger: logger, auth: auth}
}

// IssueToken maneja POST /api/auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := h.auth.IssueToken(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		case errors.Is(err, service.ErrAuthNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator auth not configured"})
		default:
			h.logger.Error("issue token failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		}
		return
	}

	c.JSON(http.StatusOK, token)
}
