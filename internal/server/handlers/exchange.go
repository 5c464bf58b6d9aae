package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/exchangeservice"
	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/pkg/currency"
)

type ExchangeHandler struct {
	exchangeService exchangeservice.IExchangeService
	logger          zerolog.Logger
}

func NewExchangeHandler(exchangeService exchangeservice.IExchangeService, logger zerolog.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		exchangeService: exchangeService,
		logger:          logger,
	}
}

func (h *ExchangeHandler) ExtractReceipt(c *gin.Context) {
	file, _, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "receipt image file is required",
		})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "failed to read receipt image",
		})
		return
	}

	extraction, err := h.exchangeService.ExtractReceipt(c.Request.Context(), image)
	if err != nil {
		if errors.Is(err, models.ErrExtractionFailed) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Bad Gateway",
				"message": "receipt could not be read",
			})
			return
		}
		respondServiceError(c, h.logger, err, "Receipt extraction failed")
		return
	}

	c.JSON(http.StatusOK, extraction)
}

type submitRequest struct {
	RequesterID    int64   `json:"requester_id" binding:"required"`
	RequesterName  string  `json:"requester_name" binding:"required"`
	DeclaredAmount float64 `json:"declared_amount"`

	// DeclaredAmountText is the raw operator-entered amount, accepted with
	// thousands separators. Takes precedence over DeclaredAmount when set.
	DeclaredAmountText string `json:"declared_amount_text"`

	Extraction          *models.ReceiptExtraction `json:"extraction"`
	ReceiptRef          string                    `json:"receipt_ref"`
	PayoutBank          string                    `json:"payout_bank" binding:"required"`
	PayoutAccountNumber string                    `json:"payout_account_number" binding:"required"`
	PayoutAccountName   string                    `json:"payout_account_name" binding:"required"`
}

func (h *ExchangeHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	if req.DeclaredAmountText != "" {
		amount, err := currency.ParseAmount(req.DeclaredAmountText)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": err.Error(),
			})
			return
		}
		req.DeclaredAmount = amount
	}

	var receiptRef *string
	if req.ReceiptRef != "" {
		receiptRef = &req.ReceiptRef
	}

	tx, err := h.exchangeService.Submit(c.Request.Context(), &exchangeservice.Submission{
		RequesterID:         req.RequesterID,
		RequesterName:       req.RequesterName,
		DeclaredAmount:      req.DeclaredAmount,
		Extraction:          req.Extraction,
		ReceiptRef:          receiptRef,
		PayoutBank:          req.PayoutBank,
		PayoutAccountNumber: req.PayoutAccountNumber,
		PayoutAccountName:   req.PayoutAccountName,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "Submission failed")
		return
	}

	c.JSON(http.StatusCreated, tx)
}

func (h *ExchangeHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.exchangeService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Transaction lookup failed")
		return
	}

	c.JSON(http.StatusOK, tx)
}

type confirmRequest struct {
	PayoutBank string `json:"payout_bank" binding:"required"`
}

func (h *ExchangeHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	result, err := h.exchangeService.Confirm(c.Request.Context(), id, req.PayoutBank)
	if err != nil {
		respondServiceError(c, h.logger, err, "Confirmation failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ExchangeHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.exchangeService.Cancel(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.logger, err, "Cancellation failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type counterReceiptRequest struct {
	Reference string `json:"reference" binding:"required"`
}

func (h *ExchangeHandler) AttachCounterReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req counterReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": err.Error(),
		})
		return
	}

	if err := h.exchangeService.AttachCounterReceipt(c.Request.Context(), id, req.Reference); err != nil {
		respondServiceError(c, h.logger, err, "Attaching counter receipt failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "attached"})
}

func (h *ExchangeHandler) LatestPending(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	tx, err := h.exchangeService.LatestPendingFor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, err, "Pending lookup failed")
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (h *ExchangeHandler) TodaySummary(c *gin.Context) {
	summary, err := h.exchangeService.TodaySummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err, "Summary failed")
		return
	}

	c.JSON(http.StatusOK, summary)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "id must be an integer",
		})
		return 0, false
	}
	return id, true
}

// respondServiceError maps domain errors onto HTTP statuses.
func respondServiceError(c *gin.Context, logger zerolog.Logger, err error, logMsg string) {
	var validation *models.ValidationError
	var insufficient *models.InsufficientFundsError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": validation.Error(),
		})
	case errors.Is(err, models.ErrNoMatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Unprocessable Entity",
			"message": "no receiving account matches the receipt",
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "resource not found",
		})
	case errors.Is(err, models.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": "transaction is no longer pending",
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":    "Conflict",
			"message":  insufficient.Error(),
			"shortage": insufficient.Shortage(),
		})
	default:
		logger.Error().Err(err).Msg(logMsg)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": logMsg,
		})
	}
}
