package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/exchangeservice"
)

type AdminHandler struct {
	exchangeService exchangeservice.IExchangeService
	logger          zerolog.Logger
}

func NewAdminHandler(exchangeService exchangeservice.IExchangeService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		exchangeService: exchangeService,
		logger:          logger,
	}
}

func (h *AdminHandler) GetRate(c *gin.Context) {
	rate, err := h.exchangeService.GetRate(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Rate lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rate": rate})
}

type setRateRequest struct {
	Rate float64 `json:"rate" binding:"required"`
}

func (h *AdminHandler) SetRate(c *gin.Context) {
	var req setRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	if err := h.exchangeService.SetRate(c.Request.Context(), req.Rate); err != nil {
		respondServiceError(c, h.logger, err, "Rate update failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rate": req.Rate})
}

func (h *AdminHandler) ListBalances(c *gin.Context) {
	balances, err := h.exchangeService.ListBalances(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Balance list failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balances": balances,
		"total":    len(balances),
	})
}

type balanceChangeRequest struct {
	Currency string  `json:"currency" binding:"required"`
	Bank     string  `json:"bank" binding:"required"`
	Amount   float64 `json:"amount"`
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	var req balanceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	change, err := h.exchangeService.AdjustBalance(c.Request.Context(), req.Currency, req.Bank, req.Amount)
	if err != nil {
		respondServiceError(c, h.logger, err, "Balance adjustment failed")
		return
	}

	c.JSON(http.StatusOK, change)
}

func (h *AdminHandler) SetBalance(c *gin.Context) {
	var req balanceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	change, err := h.exchangeService.SetBalance(c.Request.Context(), req.Currency, req.Bank, req.Amount)
	if err != nil {
		respondServiceError(c, h.logger, err, "Balance update failed")
		return
	}

	c.JSON(http.StatusOK, change)
}

func (h *AdminHandler) GetSetting(c *gin.Context) {
	value, err := h.exchangeService.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondServiceError(c, h.logger, err, "Setting lookup failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":   c.Param("key"),
		"value": value,
	})
}

type setSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *AdminHandler) SetSetting(c *gin.Context) {
	var req setSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	if err := h.exchangeService.SetSetting(c.Request.Context(), c.Param("key"), req.Value); err != nil {
		respondServiceError(c, h.logger, err, "Setting update failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":   c.Param("key"),
		"value": req.Value,
	})
}
