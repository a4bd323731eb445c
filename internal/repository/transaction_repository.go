package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akylbek/acquirer-service/internal/interfaces"
	"github.com/akylbek/acquirer-service/internal/models"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_id VARCHAR(255) PRIMARY KEY,
			merchant_id VARCHAR(255) NOT NULL,
			amount DECIMAL(19,2) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			card_token VARCHAR(255) NOT NULL,
			card_expiry VARCHAR(7) NOT NULL,
			operation_type VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL,
			response_code VARCHAR(10),
			issuer_response VARCHAR(20),
			rejection_reason VARCHAR(255),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			processed_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_merchant_id ON transactions(merchant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_merchant_status ON transactions(merchant_id, status)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (transaction_id, merchant_id, amount, currency,
			card_token, card_expiry, operation_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, tx.TransactionID, tx.MerchantID, tx.Amount, tx.Currency,
		tx.CardToken, tx.CardExpiry, tx.OperationType, tx.Status, tx.CreatedAt, tx.UpdatedAt)
	return err
}

// Update writes the outcome fields of a pending transaction. Records that
// already reached a terminal status are never overwritten.
func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, response_code = $2, issuer_response = $3,
			rejection_reason = $4, processed_at = $5, updated_at = $6
		WHERE transaction_id = $7 AND status = $8
	`, tx.Status, nullString(tx.ResponseCode), nullString(tx.IssuerResponse),
		nullString(tx.RejectionReason), nullTime(tx.ProcessedAt), tx.UpdatedAt,
		tx.TransactionID, models.StatusPending)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByID(ctx, tx.TransactionID); err != nil {
			return err
		}
		return fmt.Errorf("transaction %s is already finalized", tx.TransactionID)
	}
	return nil
}

const transactionColumns = `transaction_id, merchant_id, amount, currency,
	card_token, card_expiry, operation_type, status, response_code,
	issuer_response, rejection_reason, created_at, updated_at, processed_at`

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions`)
}

func (r *TransactionRepository) FindByMerchant(ctx context.Context, merchantID string) ([]models.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE merchant_id = $1 ORDER BY created_at DESC`, merchantID)
}

func (r *TransactionRepository) FindByStatus(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE status = $1`, status)
}

func (r *TransactionRepository) FindByMerchantAndStatus(ctx context.Context, merchantID string, status models.TransactionStatus) ([]models.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE merchant_id = $1 AND status = $2`, merchantID, status)
}

func (r *TransactionRepository) CountByMerchantAndStatus(ctx context.Context, merchantID string, status models.TransactionStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions
		WHERE merchant_id = $1 AND status = $2`, merchantID, status).Scan(&count)
	return count, err
}

func (r *TransactionRepository) FindRecentByMerchant(ctx context.Context, merchantID string, since time.Time) ([]models.Transaction, error) {
	return r.query(ctx, `SELECT `+transactionColumns+` FROM transactions
		WHERE merchant_id = $1 AND created_at >= $2 ORDER BY created_at DESC`, merchantID, since)
}

func (r *TransactionRepository) query(ctx context.Context, q string, args ...any) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var responseCode, issuerResponse, rejectionReason sql.NullString
	var processedAt sql.NullTime

	err := row.Scan(&tx.TransactionID, &tx.MerchantID, &tx.Amount, &tx.Currency,
		&tx.CardToken, &tx.CardExpiry, &tx.OperationType, &tx.Status,
		&responseCode, &issuerResponse, &rejectionReason,
		&tx.CreatedAt, &tx.UpdatedAt, &processedAt)
	if err != nil {
		return nil, err
	}

	tx.ResponseCode = responseCode.String
	tx.IssuerResponse = issuerResponse.String
	tx.RejectionReason = rejectionReason.String
	if processedAt.Valid {
		t := processedAt.Time
		tx.ProcessedAt = &t
	}
	return &tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
