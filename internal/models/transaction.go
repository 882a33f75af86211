package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type IncomeStatus string

const (
	// Income has no approval gate, records are terminal once created.
	IncomeCompleted IncomeStatus = "completed"
)

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
	ExpensePaid     ExpenseStatus = "paid"
)

var (
	ErrExpenseNotPending  = fmt.Errorf("%w: only pending expenses can be approved or rejected", ErrConflict)
	ErrExpenseNotApproved = fmt.Errorf("%w: only approved expenses can be paid", ErrConflict)
)

// IncomeRecord is a settled incoming payment booked against an account.
//
// The reference is unique: it doubles as the idempotency key for the fee
// reconciliation importer.
type IncomeRecord struct {
	DefaultModel
	Date          time.Time
	AccountID     uuid.UUID
	Account       Account         `json:"-"`
	Amount        decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	VatAmount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // additive, not included in Amount
	Description   string
	Reference     string `gorm:"uniqueIndex"`
	PaymentMethod string
	Status        IncomeStatus
	StudentID     string // set for records imported from the fee subsystem
}

func (i *IncomeRecord) BeforeSave(_ *gorm.DB) error {
	i.Description = strings.TrimSpace(i.Description)
	i.Reference = strings.TrimSpace(i.Reference)

	if i.Date.IsZero() {
		i.Date = time.Now().In(time.UTC)
	} else {
		i.Date = i.Date.In(time.UTC)
	}

	return nil
}

// ExpenseRecord is an outgoing payment with an approval workflow.
//
// The status is a state machine: pending → approved → paid, with
// pending → rejected as the terminal failure path. No transition skips a
// state.
type ExpenseRecord struct {
	DefaultModel
	Date            time.Time
	AccountID       uuid.UUID
	Account         Account `json:"-"`
	VendorID        *uuid.UUID
	Amount          decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	VatAmount       decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Description     string
	Reference       string
	PaymentMethod   string
	Status          ExpenseStatus
	ApproverID      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason string
}

func (e *ExpenseRecord) BeforeSave(_ *gorm.DB) error {
	e.Description = strings.TrimSpace(e.Description)
	e.Reference = strings.TrimSpace(e.Reference)

	if e.Date.IsZero() {
		e.Date = time.Now().In(time.UTC)
	} else {
		e.Date = e.Date.In(time.UTC)
	}

	return nil
}

// CreateIncome books an income record. Income is always completed, there
// is no approval gate.
func CreateIncome(income IncomeRecord) (IncomeRecord, error) {
	if !income.Amount.IsPositive() {
		return income, ErrAmountNotPositive
	}
	if income.VatAmount.IsNegative() {
		return income, ErrVatAmountNegative
	}

	income.Status = IncomeCompleted

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Account{}, "id = ?", income.AccountID).Error; err != nil {
			return err
		}

		return tx.Create(&income).Error
	})

	return income, err
}

// CreateExpense books an expense record.
//
// Expenses below the configured approval threshold are auto-approved.
// This is explicit policy: small expenses do not wait for an approver.
func CreateExpense(expense ExpenseRecord) (ExpenseRecord, error) {
	if !expense.Amount.IsPositive() {
		return expense, ErrAmountNotPositive
	}
	if expense.VatAmount.IsNegative() {
		return expense, ErrVatAmountNegative
	}

	threshold := settingDecimal(SettingExpenseApprovalThreshold)
	approvalRequired := settingBool(SettingExpenseApprovalRequired)

	expense.Status = ExpenseApproved
	if approvalRequired && expense.Amount.GreaterThanOrEqual(threshold) {
		expense.Status = ExpensePending
	}
	expense.ApproverID = nil
	expense.ApprovedAt = nil
	expense.RejectionReason = ""

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Account{}, "id = ?", expense.AccountID).Error; err != nil {
			return err
		}

		return tx.Create(&expense).Error
	})

	return expense, err
}

// ApproveExpense transitions an expense from pending to approved.
//
// The transition is a conditional update so that two concurrent approvals
// can never both succeed: the loser sees zero affected rows and gets a
// conflict carrying the actual status.
func ApproveExpense(id uuid.UUID, approverID uuid.UUID) (ExpenseRecord, error) {
	return expenseTransition(id, ExpensePending, ExpenseApproved, ErrExpenseNotPending, map[string]interface{}{
		"approver_id": approverID,
		"approved_at": time.Now().In(time.UTC),
	})
}

// RejectExpense transitions an expense from pending to rejected. The
// reason is mandatory and stored.
func RejectExpense(id uuid.UUID, reason string) (ExpenseRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ExpenseRecord{}, ErrRejectionReasonRequired
	}

	return expenseTransition(id, ExpensePending, ExpenseRejected, ErrExpenseNotPending, map[string]interface{}{
		"rejection_reason": reason,
	})
}

// PayExpense transitions an expense from approved to paid.
func PayExpense(id uuid.UUID) (ExpenseRecord, error) {
	return expenseTransition(id, ExpenseApproved, ExpensePaid, ErrExpenseNotApproved, nil)
}

func expenseTransition(id uuid.UUID, from, to ExpenseStatus, conflict error, extra map[string]interface{}) (ExpenseRecord, error) {
	var expense ExpenseRecord

	err := DB.Transaction(func(tx *gorm.DB) error {
		values := map[string]interface{}{"status": to}
		for k, v := range extra {
			values[k] = v
		}

		res := tx.Model(&ExpenseRecord{}).
			Where("id = ? AND status = ?", id, from).
			Updates(values)
		if res.Error != nil {
			return res.Error
		}

		if err := tx.First(&expense, "id = ?", id).Error; err != nil {
			return err
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("%w, it is currently %s", conflict, expense.Status)
		}

		return nil
	})

	return expense, err
}

// CategoryTotal is one row of the by-category reports.
type CategoryTotal struct {
	AccountID   uuid.UUID       `json:"accountId"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Total       decimal.Decimal `json:"total"`
}

// IncomeByCategory sums amount plus VAT of completed income records,
// grouped by account. An optional glob pattern filters by account code,
// e.g. "4-*" for a subtree of the chart of accounts.
func IncomeByCategory(codePattern string) ([]CategoryTotal, error) {
	var rows []CategoryTotal

	err := DB.Model(&IncomeRecord{}).
		Joins("JOIN accounts ON accounts.id = income_records.account_id").
		Where("income_records.status = ?", IncomeCompleted).
		Select("accounts.id AS account_id, accounts.code AS account_code, accounts.name AS account_name, SUM(income_records.amount + income_records.vat_amount) AS total").
		Group("accounts.id").
		Order("accounts.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return filterByCode(rows, codePattern), nil
}

// ExpensesByCategory sums amount plus VAT of approved and paid expense
// records, grouped by account. Pending and rejected expenses are not
// money that moved.
func ExpensesByCategory(codePattern string) ([]CategoryTotal, error) {
	var rows []CategoryTotal

	err := DB.Model(&ExpenseRecord{}).
		Joins("JOIN accounts ON accounts.id = expense_records.account_id").
		Where("expense_records.status IN ?", []ExpenseStatus{ExpenseApproved, ExpensePaid}).
		Select("accounts.id AS account_id, accounts.code AS account_code, accounts.name AS account_name, SUM(expense_records.amount + expense_records.vat_amount) AS total").
		Group("accounts.id").
		Order("accounts.code ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return filterByCode(rows, codePattern), nil
}

func filterByCode(rows []CategoryTotal, pattern string) []CategoryTotal {
	if pattern == "" {
		return rows
	}

	filtered := make([]CategoryTotal, 0, len(rows))
	for _, row := range rows {
		if glob.Glob(pattern, row.AccountCode) {
			filtered = append(filtered, row)
		}
	}

	return filtered
}
