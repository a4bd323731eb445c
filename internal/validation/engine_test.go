package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/akylbek/acquirer-service/internal/config"
	"github.com/akylbek/acquirer-service/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(config.RulesConfig{
		DefaultMaxAmount:    decimal.RequireFromString("10000.00"),
		BlockedCardPatterns: []string{"^4111111111111111$", "^5555555555554444$"},
		SupportedCurrencies: []string{"USD", "EUR", "GBP", "ARS", "BRL"},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateAmountZero(t *testing.T) {
	engine := newTestEngine(t)
	merchant := &models.Merchant{MerchantID: "M1", Active: true}

	outcome := engine.ValidateAmount(amount("0.00"), merchant)
	if outcome.Valid {
		t.Fatal("expected zero amount to be invalid")
	}
	if outcome.Reason != "Amount must be greater than zero" {
		t.Fatalf("unexpected reason: %q", outcome.Reason)
	}
}

func TestValidateAmountDefaultLimitBoundary(t *testing.T) {
	engine := newTestEngine(t)
	merchant := &models.Merchant{MerchantID: "M1", Active: true}

	if outcome := engine.ValidateAmount(amount("0.01"), merchant); !outcome.Valid {
		t.Fatalf("expected 0.01 to be valid, got %q", outcome.Reason)
	}
	if outcome := engine.ValidateAmount(amount("10000.00"), merchant); !outcome.Valid {
		t.Fatalf("expected limit amount to be valid, got %q", outcome.Reason)
	}

	outcome := engine.ValidateAmount(amount("10000.01"), merchant)
	if outcome.Valid {
		t.Fatal("expected amount over default limit to be invalid")
	}
	if !strings.Contains(outcome.Reason, "10000.01") || !strings.Contains(outcome.Reason, "10000.00") {
		t.Fatalf("reason must contain amount and limit, got %q", outcome.Reason)
	}
}

func TestValidateAmountMerchantOverride(t *testing.T) {
	engine := newTestEngine(t)
	limit := amount("5000.00")
	merchant := &models.Merchant{MerchantID: "M1", Active: true, MaxTransactionAmount: &limit}

	outcome := engine.ValidateAmount(amount("6000.00"), merchant)
	if outcome.Valid {
		t.Fatal("expected amount over merchant limit to be invalid")
	}
	if outcome.Reason != "Amount 6000.00 exceeds merchant limit 5000.00" {
		t.Fatalf("unexpected reason: %q", outcome.Reason)
	}
}

func TestValidateCardTokenBlocked(t *testing.T) {
	engine := newTestEngine(t)

	outcome := engine.ValidateCardToken("4111111111111111")
	if outcome.Valid {
		t.Fatal("expected blocked card to be invalid")
	}
	if outcome.Reason != "Card is blocked" {
		t.Fatalf("reason must not leak the pattern, got %q", outcome.Reason)
	}
}

func TestValidateCardTokenValid(t *testing.T) {
	engine := newTestEngine(t)

	if outcome := engine.ValidateCardToken("tok_abc123"); !outcome.Valid {
		t.Fatalf("expected token to be valid, got %q", outcome.Reason)
	}
	// Pattern must match the whole token, not a substring.
	if outcome := engine.ValidateCardToken("tok_4111111111111111"); !outcome.Valid {
		t.Fatalf("expected prefixed token to be valid, got %q", outcome.Reason)
	}
}

func TestValidateCardTokenBlank(t *testing.T) {
	engine := newTestEngine(t)

	for _, token := range []string{"", "   "} {
		outcome := engine.ValidateCardToken(token)
		if outcome.Valid {
			t.Fatalf("expected blank token %q to be invalid", token)
		}
		if outcome.Reason != "Card token is required" {
			t.Fatalf("unexpected reason: %q", outcome.Reason)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	engine := newTestEngine(t)

	if outcome := engine.ValidateCurrency("USD"); !outcome.Valid {
		t.Fatalf("expected USD to be valid, got %q", outcome.Reason)
	}
	if outcome := engine.ValidateCurrency("eur"); !outcome.Valid {
		t.Fatalf("expected lowercase code to be accepted, got %q", outcome.Reason)
	}

	outcome := engine.ValidateCurrency("XXX")
	if outcome.Valid {
		t.Fatal("expected XXX to be invalid")
	}
	if outcome.Reason != "Currency not supported: XXX" {
		t.Fatalf("unexpected reason: %q", outcome.Reason)
	}

	// The rejected code is echoed verbatim, original case preserved.
	if outcome := engine.ValidateCurrency("xxx"); outcome.Reason != "Currency not supported: xxx" {
		t.Fatalf("unexpected reason: %q", outcome.Reason)
	}
}

func TestNewEngineRejectsBadPattern(t *testing.T) {
	_, err := NewEngine(config.RulesConfig{
		DefaultMaxAmount:    decimal.RequireFromString("10000.00"),
		BlockedCardPatterns: []string{"["},
	})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}
