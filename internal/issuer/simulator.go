// Package issuer stands in for the card network's authorization system.
// Decisions are drawn from an injected random source so tests can force
// deterministic outcomes.
package issuer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/acquirer-service/internal/config"
	"github.com/akylbek/acquirer-service/internal/metrics"
	"github.com/akylbek/acquirer-service/internal/models"
	"github.com/akylbek/acquirer-service/internal/telemetry"
)

// Decision is the issuer's answer to an authorization request.
type Decision struct {
	Approved     bool
	ResponseCode string
	Message      string
}

func Approved() Decision {
	return Decision{Approved: true, ResponseCode: "00", Message: "Approved"}
}

func Declined(code, message string) Decision {
	return Decision{Approved: false, ResponseCode: code, Message: message}
}

var declineCodes = []string{"05", "51", "54", "61", "65"}

// DeclineMessage maps an issuer decline code to its message.
func DeclineMessage(code string) string {
	switch code {
	case "05":
		return "Do not honor"
	case "51":
		return "Insufficient funds"
	case "54":
		return "Expired card"
	case "61":
		return "Exceeds withdrawal limit"
	case "65":
		return "Activity limit exceeded"
	default:
		return "Transaction declined"
	}
}

type Simulator struct {
	cfg    config.IssuerConfig
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator builds a simulator around the given random source. A nil
// source gets a time-seeded one.
func NewSimulator(cfg config.IssuerConfig, rng *rand.Rand, logger *zap.Logger) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{cfg: cfg, logger: logger, rng: rng}
}

// Authorize simulates a network round trip to the issuer. Log lines go
// through the request-scoped logger when the caller attached one to ctx, so
// they carry the transaction's correlation fields. The artificial delay
// suspends only the calling goroutine and always runs to completion; there
// is no mid-flight cancellation.
func (s *Simulator) Authorize(ctx context.Context, cardToken string, amount decimal.Decimal, currency string) (Decision, error) {
	log := telemetry.LoggerFrom(ctx, s.logger)
	log.Debug("Calling issuer for authorization",
		zap.String("card", models.MaskCardToken(cardToken)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("currency", currency),
	)

	delay, approved, codeIdx := s.draw()
	time.Sleep(delay)

	var decision Decision
	if approved {
		decision = Approved()
		log.Info("Issuer APPROVED transaction",
			zap.String("card", models.MaskCardToken(cardToken)),
		)
	} else {
		code := declineCodes[codeIdx]
		decision = Declined(code, DeclineMessage(code))
		log.Info("Issuer DECLINED transaction",
			zap.String("card", models.MaskCardToken(cardToken)),
			zap.String("code", code),
			zap.String("reason", decision.Message),
		)
	}

	metrics.IssuerDecisions.WithLabelValues(decision.ResponseCode).Inc()
	return decision, nil
}

// draw takes every random sample under one lock so concurrent calls never
// interleave reads of the shared source.
func (s *Simulator) draw() (delay time.Duration, approved bool, codeIdx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay = s.cfg.MinDelay
	if spread := s.cfg.MaxDelay - s.cfg.MinDelay; spread > 0 {
		delay += time.Duration(s.rng.Int63n(int64(spread)))
	}
	approved = s.rng.Float64() < s.cfg.ApprovalRate
	codeIdx = s.rng.Intn(len(declineCodes))
	return delay, approved, codeIdx
}
