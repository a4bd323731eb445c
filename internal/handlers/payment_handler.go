package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/acquirer-service/internal/models"
	"github.com/akylbek/acquirer-service/internal/payment"
	"github.com/akylbek/acquirer-service/internal/telemetry"
)

var cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{4}$`)

type PaymentHandler struct {
	service     *payment.Service
	redisClient *redis.Client
}

// NewPaymentHandler builds the HTTP-facing payment handler. redisClient may
// be nil when response caching is disabled.
func NewPaymentHandler(service *payment.Service, redisClient *redis.Client) *PaymentHandler {
	return &PaymentHandler{service: service, redisClient: redisClient}
}

func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.Logger.Warn("Invalid payment request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	if reason, ok := checkRequestShape(req); !ok {
		telemetry.Logger.Warn("Invalid payment request", zap.String("reason", reason))
		respondError(c, http.StatusBadRequest, "Invalid Request", reason)
		return
	}

	response, err := h.service.ProcessPayment(ctx, req)
	if err != nil {
		var validationErr *payment.ValidationError
		var merchantErr *payment.MerchantNotFoundError
		switch {
		case errors.As(err, &validationErr):
			respondError(c, http.StatusBadRequest, "Validation Error", validationErr.Reason)
		case errors.As(err, &merchantErr):
			respondError(c, http.StatusNotFound, "Merchant Not Found", merchantErr.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
		}
		return
	}

	h.cacheResponse(c, &response)
	c.JSON(http.StatusCreated, response)
}

func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	transactionID := c.Param("id")

	response, err := h.service.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		if errors.Is(err, payment.ErrTransactionNotFound) {
			respondError(c, http.StatusNotFound, "Transaction Not Found",
				"Transaction not found: "+transactionID)
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal Server Error",
			"Failed to fetch transaction")
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *PaymentHandler) QueryTransactions(c *gin.Context) {
	merchantID := c.Query("merchantId")

	var status models.TransactionStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := models.ParseTransactionStatus(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "Invalid Request",
				"Unknown transaction status: "+raw)
			return
		}
		status = parsed
	}

	responses, err := h.service.QueryTransactions(c.Request.Context(), merchantID, status)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Internal Server Error",
			"Failed to query transactions")
		return
	}

	c.JSON(http.StatusOK, responses)
}

// checkRequestShape covers the constraints gin binding tags cannot express.
func checkRequestShape(req models.PaymentRequest) (string, bool) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return "Amount must be greater than 0", false
	}
	if req.Amount.Exponent() < -2 {
		return "Amount must have at most 2 decimal places", false
	}
	if !cardExpiryPattern.MatchString(req.CardExpiry) {
		return "Card expiry must be in format MM/YYYY", false
	}
	return "", true
}

func (h *PaymentHandler) cacheResponse(c *gin.Context, response *models.PaymentResponse) {
	if h.redisClient == nil {
		return
	}
	key := c.GetString("idempotency_key")
	if key == "" {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := h.redisClient.Set(c.Request.Context(),
		fmt.Sprintf("idempotency:%s", key), payload, 24*time.Hour).Err(); err != nil {
		telemetry.Logger.Warn("Failed to cache payment response",
			zap.String("transaction_id", response.TransactionID),
			zap.Error(err),
		)
	}
}

func respondError(c *gin.Context, status int, errorLabel, message string) {
	c.JSON(status, models.ErrorResponse{
		Error:     errorLabel,
		Message:   message,
		Status:    status,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
