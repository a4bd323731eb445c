// Package payment implements the processing pipeline that turns an
// inbound payment request into a persisted transaction with a terminal
// status. Every attempt that creates a record leaves it auditable: no
// failure path may exit with the record still PENDING.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/acquirer-service/internal/interfaces"
	"github.com/akylbek/acquirer-service/internal/issuer"
	"github.com/akylbek/acquirer-service/internal/metrics"
	"github.com/akylbek/acquirer-service/internal/models"
	"github.com/akylbek/acquirer-service/internal/telemetry"
	"github.com/akylbek/acquirer-service/internal/validation"
)

// Authorizer is the issuer-facing contract consumed by the pipeline. The
// pipeline attaches its request-scoped logger to ctx so the implementation
// logs with the transaction's correlation fields.
type Authorizer interface {
	Authorize(ctx context.Context, cardToken string, amount decimal.Decimal, currency string) (issuer.Decision, error)
}

// Publisher emits an event for every finalized transaction. Publish
// failures never fail the payment.
type Publisher interface {
	PublishProcessed(ctx context.Context, tx *models.Transaction) error
}

type Service struct {
	transactions interfaces.TransactionRepository
	merchants    interfaces.MerchantRepository
	validator    *validation.Engine
	authorizer   Authorizer
	publisher    Publisher
	logger       *zap.Logger
}

// NewService wires the pipeline. publisher may be nil when event emission
// is not configured.
func NewService(
	transactions interfaces.TransactionRepository,
	merchants interfaces.MerchantRepository,
	validator *validation.Engine,
	authorizer Authorizer,
	publisher Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		transactions: transactions,
		merchants:    merchants,
		validator:    validator,
		authorizer:   authorizer,
		publisher:    publisher,
		logger:       logger,
	}
}

// ProcessPayment runs the full pipeline: persist a PENDING record, resolve
// the merchant, apply business rules, authorize with the issuer and
// finalize the record to a terminal status. The initial write must succeed
// before anything else runs; once it has, every exit path finalizes the
// record before returning.
func (s *Service) ProcessPayment(ctx context.Context, req models.PaymentRequest) (models.PaymentResponse, error) {
	start := time.Now()
	transactionID := uuid.New().String()

	// Correlation fields ride on a per-call logger so concurrent requests
	// never share them.
	log := s.logger.With(
		zap.String("transaction_id", transactionID),
		zap.String("merchant_id", req.MerchantID),
	)
	ctx = telemetry.WithLogger(ctx, log)

	log.Info("Payment processing started",
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("currency", req.Currency),
		zap.String("card", models.MaskCardToken(req.CardToken)),
	)

	tx := &models.Transaction{
		TransactionID: transactionID,
		MerchantID:    req.MerchantID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		CardToken:     req.CardToken,
		CardExpiry:    req.CardExpiry,
		OperationType: req.OperationType,
		Status:        models.StatusPending,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		log.Error("Failed to create pending transaction", zap.Error(err))
		return models.PaymentResponse{}, &ProcessingError{Err: err}
	}
	log.Debug("Transaction created with PENDING status")

	merchant, err := s.merchants.FindActive(ctx, req.MerchantID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			notFound := &MerchantNotFoundError{MerchantID: req.MerchantID}
			log.Error("Merchant validation failed", zap.String("reason", notFound.Error()))
			s.finalizeError(ctx, log, tx, notFound.Error())
			return models.PaymentResponse{}, notFound
		}
		log.Error("Merchant lookup failed", zap.Error(err))
		s.finalizeError(ctx, log, tx, "System error: "+err.Error())
		return models.PaymentResponse{}, &ProcessingError{Err: err}
	}
	log.Info("Merchant validation passed", zap.String("merchant_name", merchant.MerchantName))

	if outcome := s.runValidations(req, merchant); !outcome.Valid {
		log.Error("Business rule validation failed", zap.String("reason", outcome.Reason))
		s.finalizeError(ctx, log, tx, outcome.Reason)
		return models.PaymentResponse{}, &ValidationError{Reason: outcome.Reason}
	}
	log.Info("Business rules validation passed")

	log.Info("Requesting authorization from issuer")
	decision, err := s.authorizer.Authorize(ctx, req.CardToken, req.Amount, req.Currency)
	if err != nil {
		log.Error("Issuer authorization failed", zap.Error(err))
		s.finalizeError(ctx, log, tx, "System error: "+err.Error())
		return models.PaymentResponse{}, &ProcessingError{Err: err}
	}

	s.applyDecision(tx, decision)
	if err := s.transactions.Update(ctx, tx); err != nil {
		log.Error("Failed to finalize transaction with issuer decision", zap.Error(err))
		s.finalizeError(ctx, log, tx, "System error: "+err.Error())
		return models.PaymentResponse{}, &ProcessingError{Err: err}
	}

	metrics.TransactionsProcessed.WithLabelValues(string(tx.Status)).Inc()
	metrics.ProcessingDuration.Observe(time.Since(start).Seconds())

	s.publish(ctx, log, tx)

	log.Info("Payment processing completed", zap.String("status", string(tx.Status)))
	return buildPaymentResponse(tx), nil
}

// GetTransaction returns the stored transaction as a response view.
func (s *Service) GetTransaction(ctx context.Context, transactionID string) (models.PaymentResponse, error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return models.PaymentResponse{}, ErrTransactionNotFound
		}
		return models.PaymentResponse{}, err
	}
	return buildPaymentResponse(tx), nil
}

// QueryTransactions filters by whichever of merchantID and status are
// non-empty. The merchant-only filter returns newest-created-first; the
// other combinations carry no ordering guarantee.
func (s *Service) QueryTransactions(ctx context.Context, merchantID string, status models.TransactionStatus) ([]models.PaymentResponse, error) {
	var (
		txs []models.Transaction
		err error
	)

	switch {
	case merchantID != "" && status != "":
		txs, err = s.transactions.FindByMerchantAndStatus(ctx, merchantID, status)
	case merchantID != "":
		txs, err = s.transactions.FindByMerchant(ctx, merchantID)
	case status != "":
		txs, err = s.transactions.FindByStatus(ctx, status)
	default:
		txs, err = s.transactions.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]models.PaymentResponse, 0, len(txs))
	for i := range txs {
		responses = append(responses, buildPaymentResponse(&txs[i]))
	}
	return responses, nil
}

func (s *Service) runValidations(req models.PaymentRequest, merchant *models.Merchant) validation.Outcome {
	if outcome := s.validator.ValidateAmount(req.Amount, merchant); !outcome.Valid {
		return outcome
	}
	if outcome := s.validator.ValidateCardToken(req.CardToken); !outcome.Valid {
		return outcome
	}
	return s.validator.ValidateCurrency(req.Currency)
}

func (s *Service) applyDecision(tx *models.Transaction, decision issuer.Decision) {
	if decision.Approved {
		tx.Status = models.StatusApproved
		tx.IssuerResponse = "APPROVED"
	} else {
		tx.Status = models.StatusDeclined
		tx.IssuerResponse = "DECLINED"
		tx.RejectionReason = decision.Message
	}
	tx.ResponseCode = decision.ResponseCode
	now := time.Now()
	tx.ProcessedAt = &now
}

// finalizeError moves the record to ERROR with response code "99". A
// failure here is logged and swallowed so it never masks the error already
// being propagated.
func (s *Service) finalizeError(ctx context.Context, log *zap.Logger, tx *models.Transaction, reason string) {
	tx.Status = models.StatusError
	tx.ResponseCode = "99"
	tx.RejectionReason = reason
	now := time.Now()
	tx.ProcessedAt = &now

	if err := s.transactions.Update(ctx, tx); err != nil {
		log.Error("Failed to finalize transaction to ERROR", zap.Error(err))
		return
	}
	metrics.TransactionsProcessed.WithLabelValues(string(models.StatusError)).Inc()
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, tx *models.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProcessed(ctx, tx); err != nil {
		log.Error("Failed to publish transaction event", zap.Error(err))
	}
}

// buildPaymentResponse maps a transaction onto the response view. It is a
// pure function of the record.
func buildPaymentResponse(tx *models.Transaction) models.PaymentResponse {
	var message string
	switch tx.Status {
	case models.StatusApproved:
		message = "Transaction approved"
	case models.StatusDeclined:
		message = fallback(tx.RejectionReason, "Transaction declined")
	case models.StatusError:
		message = fallback(tx.RejectionReason, "Transaction error")
	default:
		message = "Transaction pending"
	}

	return models.PaymentResponse{
		TransactionID: tx.TransactionID,
		Status:        tx.Status,
		ResponseCode:  tx.ResponseCode,
		Message:       message,
		Timestamp:     tx.CreatedAt,
		MerchantID:    tx.MerchantID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
	}
}

func fallback(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
