// Package importer pulls settled fee payments from the student fee
// subsystem into the financial ledger.
package importer

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is one settled fee payment as exported by the fee subsystem.
type Payment struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"studentId"`
	Amount        decimal.Decimal `json:"amount"` // gross, VAT included
	PaymentDate   time.Time       `json:"paymentDate"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
}

// StatusSettled is the only payment status the importer books.
const StatusSettled = "settled"

// Source yields the payments to reconcile. The HTTP surface feeds it from
// a JSON body, tests feed it from fixtures.
type Source interface {
	SettledPayments() ([]Payment, error)
}

// Payments is the trivial in-memory Source.
type Payments []Payment

func (p Payments) SettledPayments() ([]Payment, error) {
	settled := make([]Payment, 0, len(p))
	for _, payment := range p {
		if payment.Status == StatusSettled {
			settled = append(settled, payment)
		}
	}

	return settled, nil
}

// TableSource reads payments directly from the fee subsystem's table when
// both systems share a database.
type TableSource struct {
	DB    *gorm.DB
	Table string // defaults to "fee_payments"
}

func (s TableSource) SettledPayments() ([]Payment, error) {
	table := s.Table
	if table == "" {
		table = "fee_payments"
	}

	var payments []Payment
	err := s.DB.Table(table).
		Where("status = ?", StatusSettled).
		Order("payment_date ASC").
		Find(&payments).Error

	return payments, err
}
