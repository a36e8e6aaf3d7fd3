package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one normalized statement line from a Belfius CSV export.
//
// The composite unique index idx_transactions_dedup defines transaction
// identity for idempotent re-imports: two rows with the same account,
// booking date, amount, counterpart account and reference are the same
// transaction. Optional fields are pointers so an absent value is stored
// as NULL, except the two optional key columns: SQL unique indexes treat
// NULLs as distinct, so a NULL counterpart or reference would never
// collide and re-imports of such rows would slip past the index. Absent
// key fields are stored as empty strings instead.
type Transaction struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	AccountNumber         string          `gorm:"size:34;not null;index;uniqueIndex:idx_transactions_dedup" json:"accountNumber"`
	StatementNumber       *string         `gorm:"size:20" json:"statementNumber"`
	TransactionNumber     *string         `gorm:"size:20" json:"transactionNumber"`
	BookingDate           string          `gorm:"size:10;not null;index;uniqueIndex:idx_transactions_dedup" json:"bookingDate"`
	ValueDate             *string         `gorm:"size:10" json:"valueDate"`
	CounterpartAccount    string          `gorm:"size:34;not null;default:'';uniqueIndex:idx_transactions_dedup" json:"counterpartAccount"`
	CounterpartName       *string         `gorm:"size:100" json:"counterpartName"`
	CounterpartAddress    *string         `gorm:"size:150" json:"counterpartAddress"`
	CounterpartPostalCode *string         `gorm:"size:10" json:"counterpartPostalCode"`
	CounterpartCity       *string         `gorm:"size:100" json:"counterpartCity"`
	TransactionType       *string         `gorm:"size:100" json:"transactionType"`
	Amount                decimal.Decimal `gorm:"type:decimal(20,2);not null;uniqueIndex:idx_transactions_dedup" json:"amount"`
	Currency              string          `gorm:"size:3;not null;default:EUR" json:"currency"`
	BIC                   *string         `gorm:"size:11" json:"bic"`
	CountryCode           *string         `gorm:"size:2" json:"countryCode"`
	Description           *string         `gorm:"size:500" json:"description"`
	ReferenceNumber       string          `gorm:"size:100;not null;default:'';uniqueIndex:idx_transactions_dedup" json:"referenceNumber"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}
