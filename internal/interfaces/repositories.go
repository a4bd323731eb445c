package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/akylbek/acquirer-service/internal/models"
)

// ErrNotFound is returned by repositories when a record is absent.
var ErrNotFound = errors.New("record not found")

// TransactionRepository defines the contract for the transaction ledger.
// Each write is atomic and durable before the call returns.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	Update(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	FindAll(ctx context.Context) ([]models.Transaction, error)
	// FindByMerchant returns newest-created-first.
	FindByMerchant(ctx context.Context, merchantID string) ([]models.Transaction, error)
	FindByStatus(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error)
	FindByMerchantAndStatus(ctx context.Context, merchantID string, status models.TransactionStatus) ([]models.Transaction, error)
	CountByMerchantAndStatus(ctx context.Context, merchantID string, status models.TransactionStatus) (int64, error)
	// FindRecentByMerchant returns transactions created after the cutoff,
	// newest-created-first.
	FindRecentByMerchant(ctx context.Context, merchantID string, since time.Time) ([]models.Transaction, error)
}

// MerchantRepository defines the contract for merchant configuration lookup.
type MerchantRepository interface {
	GetByID(ctx context.Context, merchantID string) (*models.Merchant, error)
	// FindActive resolves a merchant only when its active flag is set.
	FindActive(ctx context.Context, merchantID string) (*models.Merchant, error)
	FindActiveMerchants(ctx context.Context) ([]models.Merchant, error)
	Save(ctx context.Context, merchant *models.Merchant) error
	Count(ctx context.Context) (int64, error)
}
