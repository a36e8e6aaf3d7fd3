// Package seed fills a development database with plausible Belfius-style
// transactions.
package seed

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bankfeed-dev/bankfeed/internal/model"
)

// seedAccounts keeps generated data on a handful of owning accounts so
// filters and stats have something to group by.
var seedAccounts = []string{
	"BE68539007547034",
	"BE71096123456769",
	"BE43068999999501",
}

// Transactions inserts n fake transactions. Duplicate-key conflicts from
// colliding fakes are ignored; the point is volume, not exactness.
func Transactions(db *gorm.DB, n int) error {
	for i := 0; i < n; i++ {
		tx := fakeTransaction()
		err := db.Create(&tx).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("seeding transaction %d: %w", i+1, err)
		}
	}
	return nil
}

func fakeTransaction() model.Transaction {
	bookingDate := time.Now().AddDate(0, 0, -rand.Intn(365))
	booking := bookingDate.Format("2006-01-02")
	value := bookingDate.AddDate(0, 0, 1).Format("2006-01-02")

	// Mostly debits, some credits, cent precision.
	cents := int64(rand.Intn(500000) - 400000)
	amount := decimal.New(cents, -2)

	name := faker.Name()
	counterpart := fakeIBAN()
	description := faker.Sentence()
	reference := fmt.Sprintf("%04d", rand.Intn(10000))
	txType := "Overschrijving"
	bic := "GKCCBEBB"
	country := "BE"
	city := faker.Word()
	postal := fmt.Sprintf("%04d", 1000+rand.Intn(8000))

	return model.Transaction{
		AccountNumber:         seedAccounts[rand.Intn(len(seedAccounts))],
		BookingDate:           booking,
		ValueDate:             &value,
		CounterpartAccount:    counterpart,
		CounterpartName:       &name,
		CounterpartPostalCode: &postal,
		CounterpartCity:       &city,
		TransactionType:       &txType,
		Amount:                amount,
		Currency:              "EUR",
		BIC:                   &bic,
		CountryCode:           &country,
		Description:           &description,
		ReferenceNumber:       reference,
	}
}

func fakeIBAN() string {
	return fmt.Sprintf("BE%02d%04d%04d%04d", rand.Intn(100), rand.Intn(10000), rand.Intn(10000), rand.Intn(10000))
}
