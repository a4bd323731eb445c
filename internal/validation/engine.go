// Package validation implements the business-rule checks applied to a
// payment before it is sent to the issuer. All checks are pure functions
// over the request fields and the engine configuration, so a single engine
// is safe to share across concurrent requests.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akylbek/acquirer-service/internal/config"
	"github.com/akylbek/acquirer-service/internal/models"
)

// Outcome is the transient result of a single check. Only the reason text
// of an invalid outcome ever reaches the transaction record.
type Outcome struct {
	Valid  bool
	Reason string
}

func valid() Outcome {
	return Outcome{Valid: true}
}

func invalid(reason string) Outcome {
	return Outcome{Valid: false, Reason: reason}
}

type Engine struct {
	defaultMaxAmount decimal.Decimal
	blockedPatterns  []*regexp.Regexp
	currencies       map[string]struct{}
}

// NewEngine compiles the configured rules. Blocked-card patterns are
// matched against the whole token, so each is anchored here regardless of
// how it was written in configuration.
func NewEngine(cfg config.RulesConfig) (*Engine, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.BlockedCardPatterns))
	for _, p := range cfg.BlockedCardPatterns {
		re, err := regexp.Compile(`\A(?:` + strings.TrimSpace(p) + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked card pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	currencies := make(map[string]struct{}, len(cfg.SupportedCurrencies))
	for _, c := range cfg.SupportedCurrencies {
		currencies[strings.ToUpper(c)] = struct{}{}
	}

	return &Engine{
		defaultMaxAmount: cfg.DefaultMaxAmount,
		blockedPatterns:  patterns,
		currencies:       currencies,
	}, nil
}

// ValidateAmount checks the amount against the merchant limit, falling back
// to the configured default when the merchant carries no limit of its own.
func (e *Engine) ValidateAmount(amount decimal.Decimal, merchant *models.Merchant) Outcome {
	maxAmount := e.defaultMaxAmount
	if merchant.MaxTransactionAmount != nil {
		maxAmount = *merchant.MaxTransactionAmount
	}

	if amount.GreaterThan(maxAmount) {
		return invalid(fmt.Sprintf("Amount %s exceeds merchant limit %s",
			amount.StringFixed(2), maxAmount.StringFixed(2)))
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return invalid("Amount must be greater than zero")
	}

	return valid()
}

// ValidateCardToken rejects blank tokens and tokens matching a blocked
// pattern. The reason never reveals which pattern matched.
func (e *Engine) ValidateCardToken(cardToken string) Outcome {
	if strings.TrimSpace(cardToken) == "" {
		return invalid("Card token is required")
	}

	for _, pattern := range e.blockedPatterns {
		if pattern.MatchString(cardToken) {
			return invalid("Card is blocked")
		}
	}

	return valid()
}

// ValidateCurrency accepts only codes on the configured allow-list. The
// rejection reason echoes the code as the caller sent it.
func (e *Engine) ValidateCurrency(currency string) Outcome {
	if _, ok := e.currencies[strings.ToUpper(currency)]; !ok {
		return invalid("Currency not supported: " + currency)
	}
	return valid()
}
