package importer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shulebooks/backend/internal/models"
	"gorm.io/gorm"
)

// ErrFeeIncomeAccountNotSet is returned when no ledger account is
// configured to receive fee income.
var ErrFeeIncomeAccountNotSet = fmt.Errorf("%w: the fee_income_account setting must be configured before importing fee payments", models.ErrUnavailable)

// Result reports what a reconciliation run did.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Run imports all settled payments from the source as income records.
//
// Each payment books against the configured fee income account under the
// reference "FEE-<payment id>". The reference is the idempotency key:
// payments whose reference already exists are skipped, so running the
// same feed twice is a no-op. The gross amount is split into a net
// amount and VAT using the configured VAT rate.
//
// The run is one database transaction. A failing payment rolls back the
// whole run rather than leaving a half-imported feed.
func Run(source Source) (Result, error) {
	payments, err := source.SettledPayments()
	if err != nil {
		return Result{}, err
	}

	accountValue, err := models.GetSetting(models.SettingFeeIncomeAccount)
	if err != nil {
		return Result{}, err
	}
	accountID, err := uuid.Parse(accountValue)
	if err != nil {
		return Result{}, ErrFeeIncomeAccountNotSet
	}

	vatRate, err := vatRate()
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Account{}, "id = ?", accountID).Error; err != nil {
			return err
		}

		for _, payment := range payments {
			imported, err := importPayment(tx, accountID, vatRate, payment)
			if err != nil {
				return err
			}

			if imported {
				result.Imported++
			} else {
				result.Skipped++
			}
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func importPayment(tx *gorm.DB, accountID uuid.UUID, vatRate decimal.Decimal, payment Payment) (bool, error) {
	if !payment.Amount.IsPositive() {
		return false, fmt.Errorf("%w: payment %s has a non-positive amount", models.ErrInvalidInput, payment.ID)
	}

	reference := "FEE-" + payment.ID

	err := tx.First(&models.IncomeRecord{}, "reference = ?", reference).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}

	net, vat := splitVat(payment.Amount, vatRate)

	record := models.IncomeRecord{
		Date:          payment.PaymentDate,
		AccountID:     accountID,
		Amount:        net,
		VatAmount:     vat,
		Description:   fmt.Sprintf("Fee payment by student %s", payment.StudentID),
		Reference:     reference,
		PaymentMethod: payment.PaymentMethod,
		Status:        models.IncomeCompleted,
		StudentID:     payment.StudentID,
	}

	if err := tx.Create(&record).Error; err != nil {
		return false, err
	}

	return true, nil
}

// splitVat splits a gross amount into net and VAT for a percentage rate.
// The net amount is rounded to cents, VAT takes the remainder so the two
// always add up to the gross amount exactly.
func splitVat(gross, rate decimal.Decimal) (net, vat decimal.Decimal) {
	divisor := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
	net = gross.DivRound(divisor, 2)
	vat = gross.Sub(net)

	return net, vat
}

func vatRate() (decimal.Decimal, error) {
	value, err := models.GetSetting(models.SettingDefaultVatRate)
	if err != nil {
		return decimal.Decimal{}, err
	}

	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: the default_vat_rate setting is not a number", models.ErrUnavailable)
	}

	return rate, nil
}
