package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers string
	OTLPEndpoint string
	Port         string

	Rules  RulesConfig
	Issuer IssuerConfig
}

// RulesConfig carries the business-rule knobs consumed by the validation
// engine. Bound once at startup so every component sees one immutable view.
type RulesConfig struct {
	DefaultMaxAmount    decimal.Decimal
	BlockedCardPatterns []string
	SupportedCurrencies []string
}

type IssuerConfig struct {
	ApprovalRate float64
	MinDelay     time.Duration
	MaxDelay     time.Duration
}

const (
	defaultMaxAmount    = "10000.00"
	defaultCurrencies   = "USD,EUR,GBP,ARS,BRL"
	defaultApprovalRate = 0.7
	defaultMinDelay     = 100 * time.Millisecond
	defaultMaxDelay     = 300 * time.Millisecond
)

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	return &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		Port:         port,
		Rules: RulesConfig{
			DefaultMaxAmount:    decimalOrDefault("ACQUIRER_MAX_AMOUNT", defaultMaxAmount),
			BlockedCardPatterns: splitCSV(os.Getenv("ACQUIRER_BLOCKED_CARD_PATTERNS")),
			SupportedCurrencies: splitCSV(valueOrDefault("ACQUIRER_SUPPORTED_CURRENCIES", defaultCurrencies)),
		},
		Issuer: IssuerConfig{
			ApprovalRate: floatOrDefault("ACQUIRER_APPROVAL_RATE", defaultApprovalRate),
			MinDelay:     durationOrDefault("ISSUER_MIN_DELAY", defaultMinDelay),
			MaxDelay:     durationOrDefault("ISSUER_MAX_DELAY", defaultMaxDelay),
		},
	}
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(csv string) []string {
	if csv == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decimalOrDefault(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}

func floatOrDefault(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
