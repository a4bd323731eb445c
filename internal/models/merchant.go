package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Merchant holds per-merchant configuration consulted by the payment
// pipeline. MaxTransactionAmount is optional; when nil the system-wide
// default limit applies.
type Merchant struct {
	MerchantID           string           `json:"merchant_id"`
	MerchantName         string           `json:"merchant_name"`
	MaxTransactionAmount *decimal.Decimal `json:"max_transaction_amount,omitempty"`
	Active               bool             `json:"active"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}
