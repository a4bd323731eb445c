package payment

import "errors"

// ErrTransactionNotFound is returned by the read-side operations when the
// requested transaction does not exist.
var ErrTransactionNotFound = errors.New("transaction not found")

// MerchantNotFoundError signals that the merchant is unknown or inactive.
// The pipeline finalizes the pending record to ERROR before returning it.
type MerchantNotFoundError struct {
	MerchantID string
}

func (e *MerchantNotFoundError) Error() string {
	return "Merchant not found or inactive: " + e.MerchantID
}

// ValidationError carries the reason produced by the first failing
// business-rule check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ProcessingError wraps unexpected failures (issuer errors, ledger write
// failures) after the caller-visible record has been finalized to ERROR.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return "error processing payment: " + e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
