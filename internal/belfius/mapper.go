package belfius

import (
	"fmt"
	"strings"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// Column names as they appear in the header of a Belfius CSV export.
// The header-keyed mapping over these names is the binding contract;
// legacy exports without reliable headers go through the positional order
// of belfiusColumns instead.
const (
	colAccount            = "Rekening"
	colBookingDate        = "Boekingsdatum"
	colStatementNumber    = "Rekeninguittrekselnummer"
	colTransactionNumber  = "Transactienummer"
	colCounterpartAccount = "Rekening tegenpartij"
	colCounterpartName    = "Naam tegenpartij bevat"
	colCounterpartAddress = "Straat en nummer"
	colPostalCodeCity     = "Postcode en plaats"
	colTransactionType    = "Transactie"
	colValueDate          = "Valutadatum"
	colAmount             = "Bedrag"
	colCurrency           = "Devies"
	colBIC                = "BIC"
	colCountryCode        = "Landcode"
	colDescription        = "Mededelingen"
)

// belfiusColumns is the fixed column order of legacy exports.
var belfiusColumns = []string{
	colAccount,
	colBookingDate,
	colStatementNumber,
	colTransactionNumber,
	colCounterpartAccount,
	colCounterpartName,
	colCounterpartAddress,
	colPostalCodeCity,
	colTransactionType,
	colValueDate,
	colAmount,
	colCurrency,
	colBIC,
	colCountryCode,
	colDescription,
}

// mapRow converts a header-keyed record into a Transaction.
//
// A row missing any of account, booking date or amount is structurally
// incomplete and silently dropped (nil, nil). A present but unparsable
// booking date or amount is a row error. Everything else is optional.
func mapRow(record map[string]string) (*model.Transaction, error) {
	account := strings.TrimSpace(record[colAccount])
	dateStr := strings.TrimSpace(record[colBookingDate])
	amountStr := strings.TrimSpace(record[colAmount])

	if account == "" || dateStr == "" || amountStr == "" {
		return nil, nil
	}

	bookingDate, ok := ParseDate(dateStr)
	if !ok {
		return nil, fmt.Errorf("invalid booking date %q", dateStr)
	}

	amount, ok := ParseAmount(amountStr)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", amountStr)
	}

	tx := model.Transaction{
		AccountNumber:      account,
		StatementNumber:    optional(record[colStatementNumber]),
		TransactionNumber:  optional(record[colTransactionNumber]),
		BookingDate:        bookingDate,
		CounterpartAccount: strings.TrimSpace(record[colCounterpartAccount]),
		CounterpartName:    optional(record[colCounterpartName]),
		CounterpartAddress: optional(record[colCounterpartAddress]),
		TransactionType:    optional(record[colTransactionType]),
		Amount:             amount,
		Currency:           "EUR",
		BIC:                optional(record[colBIC]),
		CountryCode:        optional(record[colCountryCode]),
		Description:        optional(record[colDescription]),
	}

	if valueDate, ok := ParseDate(record[colValueDate]); ok {
		tx.ValueDate = &valueDate
	}

	postalCode, city := ParsePostalCodeCity(record[colPostalCodeCity])
	tx.CounterpartPostalCode = optional(postalCode)
	tx.CounterpartCity = optional(city)

	if currency := strings.TrimSpace(record[colCurrency]); currency != "" {
		tx.Currency = currency
	}

	// Prefer a reference extracted from the free-text details, fall back
	// to the raw transaction number. A row with neither keeps "" so the
	// dedup index key is never NULL.
	if ref := ExtractReference(record[colDescription]); ref != "" {
		tx.ReferenceNumber = ref
	} else {
		tx.ReferenceNumber = strings.TrimSpace(record[colTransactionNumber])
	}

	return &tx, nil
}

// optional trims s and returns nil for blank values, so absent fields end
// up as NULL rather than "".
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
