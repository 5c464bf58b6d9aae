package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/authservice"
)

type AuthHandler struct {
	authService authservice.IAuthService
	logger      zerolog.Logger
}

func NewAuthHandler(authService authservice.IAuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// IssueToken trades a valid API key for a short-lived operator JWT. The
// API key check runs in middleware before this handler.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	token, err := h.authService.GenerateOperatorToken(c.Request.Context(), "operator")
	if err != nil {
		h.logger.Error().Err(err).Msg("Token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "failed to issue token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
