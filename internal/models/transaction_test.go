package models_test

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shulebooks/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestIncomeValidation() {
	account := suite.createTestAccount(models.Account{Type: models.AccountTypeIncome})

	_, err := models.CreateIncome(models.IncomeRecord{
		AccountID: account.ID,
		Amount:    decimal.Zero,
		Reference: "INC-1",
	})
	assert.ErrorIs(suite.T(), err, models.ErrAmountNotPositive)

	_, err = models.CreateIncome(models.IncomeRecord{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(100),
		VatAmount: decimal.NewFromInt(-16),
		Reference: "INC-2",
	})
	assert.ErrorIs(suite.T(), err, models.ErrVatAmountNegative)
}

func (suite *TestSuiteStandard) TestIncomeAlwaysCompleted() {
	income := suite.createTestIncome(models.IncomeRecord{Status: "pending"})
	assert.Equal(suite.T(), models.IncomeCompleted, income.Status)
}

func (suite *TestSuiteStandard) TestIncomeReferenceUnique() {
	account := suite.createTestAccount(models.Account{Type: models.AccountTypeIncome})
	suite.createTestIncome(models.IncomeRecord{AccountID: account.ID, Reference: "FEE-P1"})

	_, err := models.CreateIncome(models.IncomeRecord{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(100),
		Reference: "FEE-P1",
	})
	assert.ErrorIs(suite.T(), err, models.ErrReferenceNotUnique)
}

func (suite *TestSuiteStandard) TestExpenseApprovalThreshold() {
	account := suite.createTestAccount(models.Account{})

	// Below the default threshold of 10000 the expense is auto-approved
	small := suite.createTestExpense(models.ExpenseRecord{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(9999),
	})
	assert.Equal(suite.T(), models.ExpenseApproved, small.Status)

	// At the threshold the expense waits for approval
	large := suite.createTestExpense(models.ExpenseRecord{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(10000),
	})
	assert.Equal(suite.T(), models.ExpensePending, large.Status)
}

func (suite *TestSuiteStandard) TestExpenseApprovalDisabled() {
	_, err := models.SetSetting(models.SettingExpenseApprovalRequired, "false")
	suite.Require().Nil(err)

	expense := suite.createTestExpense(models.ExpenseRecord{
		Amount: decimal.NewFromInt(1000000),
	})
	assert.Equal(suite.T(), models.ExpenseApproved, expense.Status)
}

func (suite *TestSuiteStandard) TestExpenseLifecycle() {
	expense := suite.createTestExpense(models.ExpenseRecord{Amount: decimal.NewFromInt(50000)})
	suite.Require().Equal(models.ExpensePending, expense.Status)

	approver := uuid.New()
	approved, err := models.ApproveExpense(expense.ID, approver)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), models.ExpenseApproved, approved.Status)
	suite.Require().NotNil(approved.ApproverID)
	assert.Equal(suite.T(), approver, *approved.ApproverID)
	assert.NotNil(suite.T(), approved.ApprovedAt)

	paid, err := models.PayExpense(expense.ID)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), models.ExpensePaid, paid.Status)

	// Paid is terminal
	_, err = models.ApproveExpense(expense.ID, uuid.New())
	assert.ErrorIs(suite.T(), err, models.ErrConflict)
}

func (suite *TestSuiteStandard) TestExpenseRejectionNeedsReason() {
	expense := suite.createTestExpense(models.ExpenseRecord{Amount: decimal.NewFromInt(50000)})

	_, err := models.RejectExpense(expense.ID, "   ")
	assert.ErrorIs(suite.T(), err, models.ErrRejectionReasonRequired)

	rejected, err := models.RejectExpense(expense.ID, "Budget exhausted for this term")
	suite.Require().Nil(err)
	assert.Equal(suite.T(), models.ExpenseRejected, rejected.Status)
	assert.Equal(suite.T(), "Budget exhausted for this term", rejected.RejectionReason)

	// Rejected is terminal, it can not be paid
	_, err = models.PayExpense(expense.ID)
	assert.ErrorIs(suite.T(), err, models.ErrExpenseNotApproved)
}

func (suite *TestSuiteStandard) TestExpensePaySkipsNoState() {
	expense := suite.createTestExpense(models.ExpenseRecord{Amount: decimal.NewFromInt(50000)})

	// pending → paid must not work
	_, err := models.PayExpense(expense.ID)
	assert.ErrorIs(suite.T(), err, models.ErrExpenseNotApproved)
	assert.Contains(suite.T(), err.Error(), "pending")
}

func (suite *TestSuiteStandard) TestExpenseConcurrentDecisionsOneWinner() {
	expense := suite.createTestExpense(models.ExpenseRecord{Amount: decimal.NewFromInt(50000)})

	const attempts = 6
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = models.ApproveExpense(expense.ID, uuid.New())
			} else {
				_, errs[i] = models.RejectExpense(expense.ID, "lost the race")
			}
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(suite.T(), err, models.ErrConflict)
		}
	}
	assert.Equal(suite.T(), 1, winners)
}

func (suite *TestSuiteStandard) TestIncomeByCategory() {
	tuition := suite.createTestAccount(models.Account{Code: "4-1100", Type: models.AccountTypeIncome})
	transport := suite.createTestAccount(models.Account{Code: "4-1200", Type: models.AccountTypeIncome})
	other := suite.createTestAccount(models.Account{Code: "9-0001", Type: models.AccountTypeIncome})

	suite.createTestIncome(models.IncomeRecord{
		AccountID: tuition.ID,
		Amount:    decimal.NewFromInt(10000),
		VatAmount: decimal.NewFromInt(1600),
	})
	suite.createTestIncome(models.IncomeRecord{AccountID: tuition.ID, Amount: decimal.NewFromInt(5000)})
	suite.createTestIncome(models.IncomeRecord{AccountID: transport.ID, Amount: decimal.NewFromInt(2000)})
	suite.createTestIncome(models.IncomeRecord{AccountID: other.ID, Amount: decimal.NewFromInt(777)})

	totals, err := models.IncomeByCategory("")
	suite.Require().Nil(err)
	suite.Require().Len(totals, 3)

	// VAT counts toward the total
	assert.Equal(suite.T(), "4-1100", totals[0].AccountCode)
	assert.True(suite.T(), totals[0].Total.Equal(decimal.NewFromInt(16600)), "expected 16600, got %s", totals[0].Total)

	// The glob pattern filters to the fee subtree
	filtered, err := models.IncomeByCategory("4-*")
	suite.Require().Nil(err)
	suite.Require().Len(filtered, 2)
	assert.Equal(suite.T(), "4-1100", filtered[0].AccountCode)
	assert.Equal(suite.T(), "4-1200", filtered[1].AccountCode)
}

func (suite *TestSuiteStandard) TestExpensesByCategoryExcludesPendingAndRejected() {
	account := suite.createTestAccount(models.Account{Code: "5-1000"})

	approved := suite.createTestExpense(models.ExpenseRecord{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(2000),
	})
	suite.Require().Equal(models.ExpenseApproved, approved.Status)

	pending := suite.createTestExpense(models.ExpenseRecord{
		AccountID: account.ID,
		Amount:    decimal.NewFromInt(50000),
	})
	suite.Require().Equal(models.ExpensePending, pending.Status)

	totals, err := models.ExpensesByCategory("")
	suite.Require().Nil(err)
	suite.Require().Len(totals, 1)

	// Only the approved expense counts, pending money has not moved
	assert.True(suite.T(), totals[0].Total.Equal(decimal.NewFromInt(2000)), "expected 2000, got %s", totals[0].Total)
}
