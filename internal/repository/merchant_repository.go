package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akylbek/acquirer-service/internal/interfaces"
	"github.com/akylbek/acquirer-service/internal/models"
)

type MerchantRepository struct {
	db *sql.DB
}

func NewMerchantRepository(db *sql.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS merchants (
			merchant_id VARCHAR(255) PRIMARY KEY,
			merchant_name VARCHAR(255) NOT NULL,
			max_transaction_amount DECIMAL(19,2),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

const merchantColumns = `merchant_id, merchant_name, max_transaction_amount, active, created_at, updated_at`

func (r *MerchantRepository) GetByID(ctx context.Context, merchantID string) (*models.Merchant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE merchant_id = $1`, merchantID)
	return scanMerchant(row)
}

func (r *MerchantRepository) FindActive(ctx context.Context, merchantID string) (*models.Merchant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE merchant_id = $1 AND active = TRUE`, merchantID)
	return scanMerchant(row)
}

func (r *MerchantRepository) FindActiveMerchants(ctx context.Context) ([]models.Merchant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+merchantColumns+` FROM merchants WHERE active = TRUE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var merchants []models.Merchant
	for rows.Next() {
		m, err := scanMerchant(rows)
		if err != nil {
			return nil, err
		}
		merchants = append(merchants, *m)
	}
	return merchants, rows.Err()
}

func (r *MerchantRepository) Save(ctx context.Context, merchant *models.Merchant) error {
	now := time.Now()
	if merchant.CreatedAt.IsZero() {
		merchant.CreatedAt = now
	}
	merchant.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO merchants (merchant_id, merchant_name, max_transaction_amount, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (merchant_id) DO UPDATE
		SET merchant_name = EXCLUDED.merchant_name,
			max_transaction_amount = EXCLUDED.max_transaction_amount,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`, merchant.MerchantID, merchant.MerchantName, nullDecimal(merchant.MaxTransactionAmount),
		merchant.Active, merchant.CreatedAt, merchant.UpdatedAt)
	return err
}

func (r *MerchantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM merchants`).Scan(&count)
	return count, err
}

// SeedDefaultMerchants inserts the bootstrap merchant set when the table is
// empty, so a fresh deployment is usable immediately.
func SeedDefaultMerchants(ctx context.Context, repo interfaces.MerchantRepository, logger *zap.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logger.Info("Initializing default merchants")

	defaults := []models.Merchant{
		{MerchantID: "MERCHANT_001", MerchantName: "Test Store Alpha", MaxTransactionAmount: decimalPtr("5000.00"), Active: true},
		{MerchantID: "MERCHANT_002", MerchantName: "Test Store Beta", MaxTransactionAmount: decimalPtr("10000.00"), Active: true},
		{MerchantID: "MERCHANT_003", MerchantName: "Test Store Gamma", MaxTransactionAmount: decimalPtr("1000.00"), Active: true},
	}

	for i := range defaults {
		if err := repo.Save(ctx, &defaults[i]); err != nil {
			return err
		}
	}

	logger.Info("Default merchants initialized", zap.Int("count", len(defaults)))
	return nil
}

func scanMerchant(row rowScanner) (*models.Merchant, error) {
	var m models.Merchant
	var maxAmount decimal.NullDecimal

	err := row.Scan(&m.MerchantID, &m.MerchantName, &maxAmount, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if maxAmount.Valid {
		d := maxAmount.Decimal
		m.MaxTransactionAmount = &d
	}
	return &m, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
