package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akylbek/acquirer-service/internal/interfaces"
	"github.com/akylbek/acquirer-service/internal/models"
)

// MemoryTransactionRepository is a mutex-guarded in-memory ledger used by
// tests and local development runs without a database.
type MemoryTransactionRepository struct {
	mu    sync.RWMutex
	txs   map[string]models.Transaction
	order []string
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{txs: make(map[string]models.Transaction)}
}

func (r *MemoryTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.txs[tx.TransactionID]; exists {
		return fmt.Errorf("transaction %s already exists", tx.TransactionID)
	}

	now := time.Now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	r.txs[tx.TransactionID] = *tx
	r.order = append(r.order, tx.TransactionID)
	return nil
}

func (r *MemoryTransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.txs[tx.TransactionID]
	if !exists {
		return interfaces.ErrNotFound
	}
	if stored.Status.IsTerminal() {
		return fmt.Errorf("transaction %s is already finalized", tx.TransactionID)
	}

	tx.CreatedAt = stored.CreatedAt
	tx.UpdatedAt = time.Now()
	r.txs[tx.TransactionID] = *tx
	return nil
}

func (r *MemoryTransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, exists := r.txs[id]
	if !exists {
		return nil, interfaces.ErrNotFound
	}
	return &tx, nil
}

func (r *MemoryTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	return r.filter(func(models.Transaction) bool { return true }, false), nil
}

func (r *MemoryTransactionRepository) FindByMerchant(ctx context.Context, merchantID string) ([]models.Transaction, error) {
	return r.filter(func(tx models.Transaction) bool {
		return tx.MerchantID == merchantID
	}, true), nil
}

func (r *MemoryTransactionRepository) FindByStatus(ctx context.Context, status models.TransactionStatus) ([]models.Transaction, error) {
	return r.filter(func(tx models.Transaction) bool {
		return tx.Status == status
	}, false), nil
}

func (r *MemoryTransactionRepository) FindByMerchantAndStatus(ctx context.Context, merchantID string, status models.TransactionStatus) ([]models.Transaction, error) {
	return r.filter(func(tx models.Transaction) bool {
		return tx.MerchantID == merchantID && tx.Status == status
	}, false), nil
}

func (r *MemoryTransactionRepository) CountByMerchantAndStatus(ctx context.Context, merchantID string, status models.TransactionStatus) (int64, error) {
	txs, _ := r.FindByMerchantAndStatus(ctx, merchantID, status)
	return int64(len(txs)), nil
}

func (r *MemoryTransactionRepository) FindRecentByMerchant(ctx context.Context, merchantID string, since time.Time) ([]models.Transaction, error) {
	return r.filter(func(tx models.Transaction) bool {
		return tx.MerchantID == merchantID && !tx.CreatedAt.Before(since)
	}, true), nil
}

func (r *MemoryTransactionRepository) filter(match func(models.Transaction) bool, newestFirst bool) []models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Transaction
	for _, id := range r.order {
		if tx := r.txs[id]; match(tx) {
			out = append(out, tx)
		}
	}
	if newestFirst {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}
	return out
}

// MemoryMerchantRepository is the in-memory merchant directory counterpart.
type MemoryMerchantRepository struct {
	mu        sync.RWMutex
	merchants map[string]models.Merchant
}

func NewMemoryMerchantRepository() *MemoryMerchantRepository {
	return &MemoryMerchantRepository{merchants: make(map[string]models.Merchant)}
}

func (r *MemoryMerchantRepository) GetByID(ctx context.Context, merchantID string) (*models.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.merchants[merchantID]
	if !exists {
		return nil, interfaces.ErrNotFound
	}
	return &m, nil
}

func (r *MemoryMerchantRepository) FindActive(ctx context.Context, merchantID string) (*models.Merchant, error) {
	m, err := r.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if !m.Active {
		return nil, interfaces.ErrNotFound
	}
	return m, nil
}

func (r *MemoryMerchantRepository) FindActiveMerchants(ctx context.Context) ([]models.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Merchant
	for _, m := range r.merchants {
		if m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemoryMerchantRepository) Save(ctx context.Context, merchant *models.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if merchant.CreatedAt.IsZero() {
		merchant.CreatedAt = now
	}
	merchant.UpdatedAt = now
	r.merchants[merchant.MerchantID] = *merchant
	return nil
}

func (r *MemoryMerchantRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.merchants)), nil
}
