package models_test

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shulebooks/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestBankAccountDefaults() {
	account := suite.createTestBankAccount(models.BankAccount{
		OpeningBalance: decimal.NewFromInt(1000),
	})

	assert.Equal(suite.T(), "KES", account.Currency)
	assert.True(suite.T(), account.CurrentBalance.Equal(decimal.NewFromInt(1000)))
}

func (suite *TestSuiteStandard) TestBankAccountInvalidCurrency() {
	_, err := models.CreateBankAccount(models.BankAccount{
		Name:     "Wrong money",
		Currency: "DOUBLOONS",
	})

	assert.ErrorIs(suite.T(), err, models.ErrCurrencyInvalid)
}

func (suite *TestSuiteStandard) TestDepositAndWithdraw() {
	account := suite.createTestBankAccount(models.BankAccount{
		OpeningBalance: decimal.NewFromInt(1000),
	})

	_, err := models.Deposit(account.ID, decimal.NewFromInt(500), "DEP-1", "")
	suite.Require().Nil(err)

	_, err = models.Withdraw(account.ID, decimal.NewFromInt(200), "WTH-1", "")
	suite.Require().Nil(err)

	var fetched models.BankAccount
	suite.Require().Nil(models.DB.First(&fetched, "id = ?", account.ID).Error)
	assert.True(suite.T(), fetched.CurrentBalance.Equal(decimal.NewFromInt(1300)), "expected 1300, got %s", fetched.CurrentBalance)
}

func (suite *TestSuiteStandard) TestMovementValidation() {
	account := suite.createTestBankAccount(models.BankAccount{})

	_, err := models.Deposit(account.ID, decimal.Zero, "DEP-0", "")
	assert.ErrorIs(suite.T(), err, models.ErrAmountNotPositive)

	_, err = models.Withdraw(account.ID, decimal.NewFromInt(-5), "WTH-0", "")
	assert.ErrorIs(suite.T(), err, models.ErrAmountNotPositive)

	_, err = models.Deposit(uuid.New(), decimal.NewFromInt(5), "DEP-404", "")
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *TestSuiteStandard) TestDepositIdempotency() {
	account := suite.createTestBankAccount(models.BankAccount{})

	first, err := models.Deposit(account.ID, decimal.NewFromInt(100), "DEP-1", "retry-key-1")
	suite.Require().Nil(err)

	// The retry returns the original transaction and books nothing
	second, err := models.Deposit(account.ID, decimal.NewFromInt(100), "DEP-1", "retry-key-1")
	suite.Require().Nil(err)
	assert.Equal(suite.T(), first.ID, second.ID)

	var fetched models.BankAccount
	suite.Require().Nil(models.DB.First(&fetched, "id = ?", account.ID).Error)
	assert.True(suite.T(), fetched.CurrentBalance.Equal(decimal.NewFromInt(100)), "expected 100, got %s", fetched.CurrentBalance)

	var count int64
	suite.Require().Nil(models.DB.Model(&models.BankTransaction{}).Where("account_id = ?", account.ID).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestDepositIdempotencyConcurrent() {
	account := suite.createTestBankAccount(models.BankAccount{})

	// All callers race over the same fresh key. Exactly one deposit may
	// book, every caller must get that one transaction back.
	transactions := make([]models.BankTransaction, 5)
	var wg sync.WaitGroup
	for i := 0; i < len(transactions); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			transaction, err := models.Deposit(account.ID, decimal.NewFromInt(100), "DEP-1", "race-key-1")
			assert.Nil(suite.T(), err)
			transactions[i] = transaction
		}(i)
	}
	wg.Wait()

	for _, transaction := range transactions {
		assert.Equal(suite.T(), transactions[0].ID, transaction.ID)
	}

	var fetched models.BankAccount
	suite.Require().Nil(models.DB.First(&fetched, "id = ?", account.ID).Error)
	assert.True(suite.T(), fetched.CurrentBalance.Equal(decimal.NewFromInt(100)), "expected 100, got %s", fetched.CurrentBalance)

	var count int64
	suite.Require().Nil(models.DB.Model(&models.BankTransaction{}).Where("account_id = ?", account.ID).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestWithdrawOverdraft() {
	account := suite.createTestBankAccount(models.BankAccount{
		OpeningBalance: decimal.NewFromInt(100),
	})

	// Overdrafts are allowed by default
	_, err := models.Withdraw(account.ID, decimal.NewFromInt(150), "WTH-1", "")
	suite.Require().Nil(err)

	var fetched models.BankAccount
	suite.Require().Nil(models.DB.First(&fetched, "id = ?", account.ID).Error)
	assert.True(suite.T(), fetched.CurrentBalance.Equal(decimal.NewFromInt(-50)))

	// With overdrafts disabled the withdrawal fails and nothing is booked
	_, err = models.SetSetting(models.SettingAllowOverdraft, "false")
	suite.Require().Nil(err)

	_, err = models.Withdraw(account.ID, decimal.NewFromInt(1), "WTH-2", "")
	assert.ErrorIs(suite.T(), err, models.ErrInsufficientFunds)

	suite.Require().Nil(models.DB.First(&fetched, "id = ?", account.ID).Error)
	assert.True(suite.T(), fetched.CurrentBalance.Equal(decimal.NewFromInt(-50)))

	var count int64
	suite.Require().Nil(models.DB.Model(&models.BankTransaction{}).Where("account_id = ? AND reference = ?", account.ID, "WTH-2").Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestTransfer() {
	source := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(1000)})
	destination := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(500)})

	transaction, err := models.Transfer(source.ID, destination.ID, decimal.NewFromInt(300), "TRF-1")
	suite.Require().Nil(err)

	assert.Equal(suite.T(), models.BankTransfer, transaction.Type)
	assert.Equal(suite.T(), source.ID, transaction.AccountID)
	suite.Require().NotNil(transaction.DestinationID)
	assert.Equal(suite.T(), destination.ID, *transaction.DestinationID)

	var from, to models.BankAccount
	suite.Require().Nil(models.DB.First(&from, "id = ?", source.ID).Error)
	suite.Require().Nil(models.DB.First(&to, "id = ?", destination.ID).Error)

	assert.True(suite.T(), from.CurrentBalance.Equal(decimal.NewFromInt(700)), "expected 700, got %s", from.CurrentBalance)
	assert.True(suite.T(), to.CurrentBalance.Equal(decimal.NewFromInt(800)), "expected 800, got %s", to.CurrentBalance)

	// A transfer is exactly one transaction row
	var count int64
	suite.Require().Nil(models.DB.Model(&models.BankTransaction{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestTransferValidation() {
	account := suite.createTestBankAccount(models.BankAccount{})

	_, err := models.Transfer(account.ID, account.ID, decimal.NewFromInt(10), "TRF-SELF")
	assert.ErrorIs(suite.T(), err, models.ErrTransferSameAccount)

	_, err = models.Transfer(account.ID, uuid.New(), decimal.NewFromInt(10), "TRF-404")
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)

	_, err = models.Transfer(account.ID, account.ID, decimal.Zero, "TRF-0")
	assert.ErrorIs(suite.T(), err, models.ErrAmountNotPositive)
}

func (suite *TestSuiteStandard) TestTransferAtomicity() {
	_, err := models.SetSetting(models.SettingAllowOverdraft, "false")
	suite.Require().Nil(err)

	source := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(100)})
	destination := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(500)})

	_, err = models.Transfer(source.ID, destination.ID, decimal.NewFromInt(150), "TRF-FAIL")
	assert.ErrorIs(suite.T(), err, models.ErrInsufficientFunds)

	// Neither the balances nor the journal show any trace of the attempt
	var from, to models.BankAccount
	suite.Require().Nil(models.DB.First(&from, "id = ?", source.ID).Error)
	suite.Require().Nil(models.DB.First(&to, "id = ?", destination.ID).Error)
	assert.True(suite.T(), from.CurrentBalance.Equal(decimal.NewFromInt(100)))
	assert.True(suite.T(), to.CurrentBalance.Equal(decimal.NewFromInt(500)))

	var count int64
	suite.Require().Nil(models.DB.Model(&models.BankTransaction{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestConcurrentOpposingTransfers() {
	a := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(1000)})
	b := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(1000)})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := models.Transfer(a.ID, b.ID, decimal.NewFromInt(10), "TRF-AB")
			assert.Nil(suite.T(), err)
		}()
		go func() {
			defer wg.Done()
			_, err := models.Transfer(b.ID, a.ID, decimal.NewFromInt(10), "TRF-BA")
			assert.Nil(suite.T(), err)
		}()
	}
	wg.Wait()

	// Opposing transfers cancel out, no money appears or vanishes
	var fetchedA, fetchedB models.BankAccount
	suite.Require().Nil(models.DB.First(&fetchedA, "id = ?", a.ID).Error)
	suite.Require().Nil(models.DB.First(&fetchedB, "id = ?", b.ID).Error)
	assert.True(suite.T(), fetchedA.CurrentBalance.Equal(decimal.NewFromInt(1000)), "expected 1000, got %s", fetchedA.CurrentBalance)
	assert.True(suite.T(), fetchedB.CurrentBalance.Equal(decimal.NewFromInt(1000)), "expected 1000, got %s", fetchedB.CurrentBalance)
}

func (suite *TestSuiteStandard) TestBankTransactionImmutable() {
	account := suite.createTestBankAccount(models.BankAccount{})

	transaction, err := models.Deposit(account.ID, decimal.NewFromInt(100), "DEP-1", "")
	suite.Require().Nil(err)

	err = models.DB.Model(&transaction).Update("amount", decimal.NewFromInt(999)).Error
	assert.ErrorIs(suite.T(), err, models.ErrBankTransactionImmutable)
}

func (suite *TestSuiteStandard) TestRecomputeBankBalance() {
	source := suite.createTestBankAccount(models.BankAccount{OpeningBalance: decimal.NewFromInt(1000)})
	destination := suite.createTestBankAccount(models.BankAccount{})

	_, err := models.Deposit(source.ID, decimal.NewFromInt(500), "DEP-1", "")
	suite.Require().Nil(err)
	_, err = models.Withdraw(source.ID, decimal.NewFromInt(200), "WTH-1", "")
	suite.Require().Nil(err)
	_, err = models.Transfer(source.ID, destination.ID, decimal.NewFromInt(300), "TRF-1")
	suite.Require().Nil(err)

	drift, err := models.RecomputeBankBalance(source.ID)
	suite.Require().Nil(err)
	assert.True(suite.T(), drift.ComputedBalance.Equal(decimal.NewFromInt(1000)), "expected 1000, got %s", drift.ComputedBalance)
	assert.True(suite.T(), drift.Drift.IsZero())

	// Transfers count as inflow on the destination side
	drift, err = models.RecomputeBankBalance(destination.ID)
	suite.Require().Nil(err)
	assert.True(suite.T(), drift.ComputedBalance.Equal(decimal.NewFromInt(300)))
	assert.True(suite.T(), drift.Drift.IsZero())

	// A manual edit behind the engine's back shows up as drift
	suite.Require().Nil(models.DB.Model(&models.BankAccount{}).Where("id = ?", source.ID).Update("current_balance", decimal.NewFromInt(1250)).Error)

	drift, err = models.RecomputeBankBalance(source.ID)
	suite.Require().Nil(err)
	assert.True(suite.T(), drift.Drift.Equal(decimal.NewFromInt(250)), "expected 250, got %s", drift.Drift)
}
