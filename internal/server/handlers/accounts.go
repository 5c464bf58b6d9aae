package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/exchangeservice"
)

type AccountHandler struct {
	exchangeService exchangeservice.IExchangeService
	logger          zerolog.Logger
}

func NewAccountHandler(exchangeService exchangeservice.IExchangeService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		exchangeService: exchangeService,
		logger:          logger,
	}
}

func (h *AccountHandler) List(c *gin.Context) {
	currency := c.Query("currency")
	if currency == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "currency query parameter is required",
		})
		return
	}

	accounts, err := h.exchangeService.ListAccounts(c.Request.Context(), currency)
	if err != nil {
		respondServiceError(c, h.logger, err, "Account list failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accounts": accounts,
		"total":    len(accounts),
	})
}

type registerAccountRequest struct {
	Currency      string  `json:"currency" binding:"required"`
	Bank          string  `json:"bank" binding:"required"`
	AccountNumber string  `json:"account_number" binding:"required"`
	AccountName   string  `json:"account_name" binding:"required"`
	DisplayName   *string `json:"display_name"`
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req registerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	err := h.exchangeService.RegisterAccount(c.Request.Context(), req.Currency, req.Bank, req.AccountNumber, req.AccountName, req.DisplayName)
	if err != nil {
		respondServiceError(c, h.logger, err, "Account registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "registered"})
}

func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.exchangeService.DeactivateAccount(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Account deactivation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

type displayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

func (h *AccountHandler) UpdateDisplayName(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req displayNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	if err := h.exchangeService.UpdateDisplayName(c.Request.Context(), id, req.DisplayName); err != nil {
		respondServiceError(c, h.logger, err, "Display name update failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
