package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bankfeed-dev/bankfeed/internal/importer"
	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// ErrNotFound reports a lookup or delete against a row that does not exist.
var ErrNotFound = errors.New("not found")

// InsertTransaction persists one transaction. A conflict on the dedup
// index comes back as importer.ErrDuplicateTransaction.
func (s *Store) InsertTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return importer.ErrDuplicateTransaction
		}
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// TransactionFilter narrows and pages a transaction listing. Dates are
// canonical YYYY-MM-DD strings, matching the stored booking date.
type TransactionFilter struct {
	Account string
	From    string
	To      string
	Page    int
	PerPage int
}

const defaultPerPage = 50

// ListTransactions returns one page of transactions, newest booking date
// first, plus the total row count for the filter.
func (s *Store) ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.Account != "" {
		q = q.Where("account_number = ?", filter.Account)
	}
	if filter.From != "" {
		q = q.Where("booking_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("booking_date <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	var txs []model.Transaction
	err := q.Order("booking_date DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	return txs, total, nil
}

// DeleteTransaction removes one transaction by ID.
func (s *Store) DeleteTransaction(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Transaction{}, id)
	if res.Error != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
