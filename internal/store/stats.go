package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// AccountStats summarizes one account's transactions.
type AccountStats struct {
	AccountNumber string          `json:"accountNumber"`
	Count         int64           `json:"count"`
	Balance       decimal.Decimal `json:"balance"`
}

// Stats summarizes the whole transaction table.
type Stats struct {
	TotalCount  int64           `json:"totalCount"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	Accounts    []AccountStats  `json:"accounts"`
}

// Stats computes transaction totals and a per-account breakdown.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	db := s.db.WithContext(ctx).Model(&model.Transaction{})

	if err := db.Count(&stats.TotalCount).Error; err != nil {
		return nil, fmt.Errorf("counting transactions: %w", err)
	}

	err := s.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("amount > 0").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalCredit).Error
	if err != nil {
		return nil, fmt.Errorf("summing credits: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("amount < 0").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalDebit).Error
	if err != nil {
		return nil, fmt.Errorf("summing debits: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("account_number, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS balance").
		Group("account_number").
		Order("account_number").
		Scan(&stats.Accounts).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating accounts: %w", err)
	}

	return stats, nil
}
