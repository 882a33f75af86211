package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BudgetStatus string

const (
	BudgetDraft    BudgetStatus = "draft"
	BudgetApproved BudgetStatus = "approved"
	BudgetActive   BudgetStatus = "active"
	BudgetClosed   BudgetStatus = "closed"
)

// Classification of a budget item in the variance report. The thresholds
// are fixed policy: spending beyond the allocation is over budget,
// spending below 80% of it is under utilized.
const (
	ClassificationOverBudget    = "Over Budget"
	ClassificationUnderUtilized = "Under Utilized"
	ClassificationOnTrack       = "On Track"
)

var underUtilizedThreshold = decimal.NewFromFloat(0.8)

var (
	ErrBudgetNotDraft    = fmt.Errorf("%w: only draft budgets can be approved", ErrConflict)
	ErrBudgetNotApproved = fmt.Errorf("%w: only approved budgets can be activated", ErrConflict)
	ErrBudgetNotClosable = fmt.Errorf("%w: only approved or active budgets can be closed", ErrConflict)
)

// Budget is a spending plan for one financial year.
//
// SpentAmount is derived: it always equals the sum of the budget's items'
// spent amounts and is recomputed in the same transaction as every item
// write. It is never writable on its own.
type Budget struct {
	DefaultModel
	FinancialYearID uuid.UUID
	FinancialYear   FinancialYear `json:"-"`
	Name            string
	Note            string
	TotalAmount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	SpentAmount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Status          BudgetStatus
	OwnerID         uuid.UUID
	ApproverID      *uuid.UUID
	ApprovedAt      *time.Time
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	b.Note = strings.TrimSpace(b.Note)
	return nil
}

// BudgetItem is one line of a budget, referencing the account the money is
// planned for.
type BudgetItem struct {
	DefaultModel
	BudgetID        uuid.UUID
	Budget          Budget `json:"-"`
	AccountID       uuid.UUID
	Account         Account         `json:"-"`
	AllocatedAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	SpentAmount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

// BudgetAllocation covers a sub-period of the budget's financial year.
//
// Variance is a pure function of the two amounts. It is recomputed on
// every write and never trusted as input.
type BudgetAllocation struct {
	DefaultModel
	BudgetID        uuid.UUID
	Budget          Budget `json:"-"`
	PeriodStart     time.Time
	PeriodEnd       time.Time
	AllocatedAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	SpentAmount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Variance        decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

// BeforeSave recomputes the variance from its inputs.
func (a *BudgetAllocation) BeforeSave(_ *gorm.DB) error {
	a.Variance = a.AllocatedAmount.Sub(a.SpentAmount)
	return nil
}

// CreateBudget creates a budget in draft status together with its initial
// items. The spent amounts start at zero regardless of input.
func CreateBudget(budget Budget, items []BudgetItem) (Budget, []BudgetItem, error) {
	if budget.Name == "" {
		return budget, items, ErrBudgetNameRequired
	}

	budget.Status = BudgetDraft
	budget.SpentAmount = decimal.Zero
	budget.ApproverID = nil
	budget.ApprovedAt = nil

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&FinancialYear{}, "id = ?", budget.FinancialYearID).Error; err != nil {
			return err
		}

		if err := tx.Create(&budget).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].BudgetID = budget.ID
			items[i].SpentAmount = decimal.Zero

			if err := tx.First(&Account{}, "id = ?", items[i].AccountID).Error; err != nil {
				return err
			}

			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})

	return budget, items, err
}

// AddBudgetItem adds a line item to a budget and recomputes the budget's
// spent amount in the same transaction.
func AddBudgetItem(item BudgetItem) (BudgetItem, error) {
	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Budget{}, "id = ?", item.BudgetID).Error; err != nil {
			return err
		}

		if err := tx.First(&Account{}, "id = ?", item.AccountID).Error; err != nil {
			return err
		}

		if err := tx.Create(&item).Error; err != nil {
			return err
		}

		return recomputeBudgetSpent(tx, item.BudgetID)
	})

	return item, err
}

// UpdateBudgetItem applies an update to a line item and recomputes the
// budget's spent amount in the same transaction.
func UpdateBudgetItem(id uuid.UUID, update BudgetItem) (BudgetItem, error) {
	var item BudgetItem

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}

		// The item stays within its budget, only the amounts move
		err := tx.Model(&item).Updates(map[string]interface{}{
			"allocated_amount": update.AllocatedAmount,
			"spent_amount":     update.SpentAmount,
		}).Error
		if err != nil {
			return err
		}

		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}

		return recomputeBudgetSpent(tx, item.BudgetID)
	})

	return item, err
}

// DeleteBudgetItem removes a line item. Items that already carry spending
// are part of the financial history and can not be deleted.
func DeleteBudgetItem(id uuid.UUID) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var item BudgetItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}

		if item.SpentAmount.IsPositive() {
			return ErrBudgetItemSpent
		}

		if err := tx.Delete(&item).Error; err != nil {
			return err
		}

		return recomputeBudgetSpent(tx, item.BudgetID)
	})
}

// DeleteBudget removes a budget and its items as long as nothing has been
// spent against it.
func DeleteBudget(id uuid.UUID) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var budget Budget
		if err := tx.First(&budget, "id = ?", id).Error; err != nil {
			return err
		}

		if budget.SpentAmount.IsPositive() {
			return ErrBudgetSpent
		}

		if err := tx.Where("budget_id = ?", id).Delete(&BudgetItem{}).Error; err != nil {
			return err
		}

		if err := tx.Where("budget_id = ?", id).Delete(&BudgetAllocation{}).Error; err != nil {
			return err
		}

		return tx.Delete(&budget).Error
	})
}

// recomputeBudgetSpent persists the budget's spent amount as the sum of
// its items. Must run inside the transaction that modified the items.
func recomputeBudgetSpent(tx *gorm.DB, budgetID uuid.UUID) error {
	var sum decimal.NullDecimal

	err := tx.Model(&BudgetItem{}).
		Where("budget_id = ?", budgetID).
		Select("SUM(spent_amount)").
		Row().
		Scan(&sum)
	if err != nil {
		return err
	}

	return tx.Model(&Budget{}).
		Where("id = ?", budgetID).
		Update("spent_amount", sum.Decimal).Error
}

// ApproveBudget transitions a budget from draft to approved.
//
// The transition is a conditional update. When it affects zero rows the
// budget either does not exist or is not in draft status; the caller gets
// the current state back so it can reconcile without re-fetching.
func ApproveBudget(id uuid.UUID, approverID uuid.UUID) (Budget, error) {
	return budgetTransition(id, []BudgetStatus{BudgetDraft}, BudgetApproved, ErrBudgetNotDraft, map[string]interface{}{
		"approver_id": approverID,
		"approved_at": time.Now().In(time.UTC),
	})
}

// ActivateBudget transitions a budget from approved to active.
func ActivateBudget(id uuid.UUID) (Budget, error) {
	return budgetTransition(id, []BudgetStatus{BudgetApproved}, BudgetActive, ErrBudgetNotApproved, nil)
}

// CloseBudget transitions a budget from approved or active to closed.
func CloseBudget(id uuid.UUID) (Budget, error) {
	return budgetTransition(id, []BudgetStatus{BudgetApproved, BudgetActive}, BudgetClosed, ErrBudgetNotClosable, nil)
}

func budgetTransition(id uuid.UUID, from []BudgetStatus, to BudgetStatus, conflict error, extra map[string]interface{}) (Budget, error) {
	var budget Budget

	err := DB.Transaction(func(tx *gorm.DB) error {
		values := map[string]interface{}{"status": to}
		for k, v := range extra {
			values[k] = v
		}

		res := tx.Model(&Budget{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(values)
		if res.Error != nil {
			return res.Error
		}

		// Zero rows means a lost race or a stale status. Fetch the actual
		// state to tell NotFound and Conflict apart.
		if err := tx.First(&budget, "id = ?", id).Error; err != nil {
			return err
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("%w, it is currently %s", conflict, budget.Status)
		}

		return nil
	})

	return budget, err
}

// BudgetItemVariance is one row of the variance report.
type BudgetItemVariance struct {
	Item            BudgetItem      `json:"item"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variancePercent"`
	Classification  string          `json:"classification"`
}

// BudgetVariance reports allocated minus spent for every item of the
// budget, with a percentage and a classification.
func BudgetVariance(id uuid.UUID) ([]BudgetItemVariance, error) {
	if err := DB.First(&Budget{}, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var items []BudgetItem
	err := DB.Where("budget_id = ?", id).Order("created_at ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}

	report := make([]BudgetItemVariance, 0, len(items))
	for _, item := range items {
		variance := item.AllocatedAmount.Sub(item.SpentAmount)

		percent := decimal.Zero
		if !item.AllocatedAmount.IsZero() {
			percent = variance.Div(item.AllocatedAmount).Mul(decimal.NewFromInt(100)).Round(2)
		}

		report = append(report, BudgetItemVariance{
			Item:            item,
			Variance:        variance,
			VariancePercent: percent,
			Classification:  classifyItem(item),
		})
	}

	return report, nil
}

func classifyItem(item BudgetItem) string {
	if item.SpentAmount.GreaterThan(item.AllocatedAmount) {
		return ClassificationOverBudget
	}

	if item.SpentAmount.LessThan(item.AllocatedAmount.Mul(underUtilizedThreshold)) {
		return ClassificationUnderUtilized
	}

	return ClassificationOnTrack
}

// BudgetSummary is the utilization report for one budget.
type BudgetSummary struct {
	Budget             Budget                          `json:"budget"`
	UtilizationPercent decimal.Decimal                 `json:"utilizationPercent"`
	SpentByAccountType map[AccountType]decimal.Decimal `json:"spentByAccountType"`
}

// GetBudgetSummary returns the budget's utilization and its spending
// grouped by account type.
func GetBudgetSummary(id uuid.UUID) (BudgetSummary, error) {
	var budget Budget
	if err := DB.First(&budget, "id = ?", id).Error; err != nil {
		return BudgetSummary{}, err
	}

	utilization := decimal.Zero
	if !budget.TotalAmount.IsZero() {
		utilization = budget.SpentAmount.Div(budget.TotalAmount).Mul(decimal.NewFromInt(100)).Round(2)
	}

	type row struct {
		AccountType AccountType
		Spent       decimal.Decimal
	}

	var rows []row
	err := DB.Model(&BudgetItem{}).
		Joins("JOIN accounts ON accounts.id = budget_items.account_id").
		Where("budget_items.budget_id = ?", id).
		Select("accounts.type AS account_type, SUM(budget_items.spent_amount) AS spent").
		Group("accounts.type").
		Scan(&rows).Error
	if err != nil {
		return BudgetSummary{}, err
	}

	byType := make(map[AccountType]decimal.Decimal, len(rows))
	for _, r := range rows {
		byType[r.AccountType] = r.Spent
	}

	return BudgetSummary{
		Budget:             budget,
		UtilizationPercent: utilization,
		SpentByAccountType: byType,
	}, nil
}

// CreateBudgetAllocation creates a period allocation for a budget. The
// period must be valid and lie within the budget's financial year.
func CreateBudgetAllocation(allocation BudgetAllocation) (BudgetAllocation, error) {
	err := DB.Transaction(func(tx *gorm.DB) error {
		var budget Budget
		if err := tx.First(&budget, "id = ?", allocation.BudgetID).Error; err != nil {
			return err
		}

		if err := checkAllocationPeriod(tx, budget, allocation); err != nil {
			return err
		}

		return tx.Create(&allocation).Error
	})

	return allocation, err
}

// UpdateBudgetAllocation applies an update to an allocation. The variance
// is recomputed from the new amounts, never taken from the input.
func UpdateBudgetAllocation(id uuid.UUID, update BudgetAllocation) (BudgetAllocation, error) {
	var allocation BudgetAllocation

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&allocation, "id = ?", id).Error; err != nil {
			return err
		}

		if !update.PeriodStart.IsZero() {
			allocation.PeriodStart = update.PeriodStart
		}
		if !update.PeriodEnd.IsZero() {
			allocation.PeriodEnd = update.PeriodEnd
		}
		allocation.AllocatedAmount = update.AllocatedAmount
		allocation.SpentAmount = update.SpentAmount

		var budget Budget
		if err := tx.First(&budget, "id = ?", allocation.BudgetID).Error; err != nil {
			return err
		}

		if err := checkAllocationPeriod(tx, budget, allocation); err != nil {
			return err
		}

		// Save runs the BeforeSave hook which recomputes the variance
		return tx.Save(&allocation).Error
	})

	return allocation, err
}

func checkAllocationPeriod(tx *gorm.DB, budget Budget, allocation BudgetAllocation) error {
	if allocation.PeriodEnd.Before(allocation.PeriodStart) {
		return ErrAllocationPeriod
	}

	var year FinancialYear
	if err := tx.First(&year, "id = ?", budget.FinancialYearID).Error; err != nil {
		return err
	}

	if allocation.PeriodStart.Before(year.StartDate) || allocation.PeriodEnd.After(year.EndDate) {
		return ErrAllocationOutsideYear
	}

	return nil
}
