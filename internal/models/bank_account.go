package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/gorm"
)

type BankTransactionType string

const (
	BankDeposit    BankTransactionType = "deposit"
	BankWithdrawal BankTransactionType = "withdrawal"
	BankTransfer   BankTransactionType = "transfer"
)

// BankAccount is a real-world bank account the school operates.
//
// CurrentBalance is a cached aggregate: the authoritative value is the
// opening balance plus the signed sum of all transactions touching the
// account. RecomputeBankBalance verifies the cache against the history.
type BankAccount struct {
	DefaultModel
	Name           string
	AccountNumber  string
	BankName       string
	Type           string
	Currency       string
	OpeningBalance decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	CurrentBalance decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

func (b *BankAccount) BeforeSave(_ *gorm.DB) error {
	b.Name = strings.TrimSpace(b.Name)
	b.AccountNumber = strings.TrimSpace(b.AccountNumber)
	b.BankName = strings.TrimSpace(b.BankName)

	return nil
}

// BankTransaction is one immutable row of the bank journal. Corrections
// are new transactions, not edits.
type BankTransaction struct {
	DefaultModel
	Type           BankTransactionType
	AccountID      uuid.UUID
	Account        BankAccount         `json:"-"`
	DestinationID  *uuid.UUID          // set iff Type is transfer
	Amount         decimal.Decimal     `gorm:"type:DECIMAL(20,8)"`
	Date           time.Time
	Reference      string
	IdempotencyKey *string             `gorm:"uniqueIndex"`
}

func (t *BankTransaction) BeforeSave(_ *gorm.DB) error {
	t.Reference = strings.TrimSpace(t.Reference)

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	return nil
}

// BeforeUpdate rejects every update. Bank transactions are immutable.
func (t *BankTransaction) BeforeUpdate(_ *gorm.DB) error {
	return ErrBankTransactionImmutable
}

// CreateBankAccount opens a bank account. The current balance starts at
// the opening balance.
func CreateBankAccount(account BankAccount) (BankAccount, error) {
	if account.Currency == "" {
		account.Currency, _ = GetSetting(SettingDefaultCurrency)
	}

	if _, err := currency.ParseISO(account.Currency); err != nil {
		return account, ErrCurrencyInvalid
	}

	account.CurrentBalance = account.OpeningBalance

	err := DB.Create(&account).Error
	return account, err
}

// Deposit books a deposit and increments the account balance, both in one
// transaction.
//
// Deposits are not naturally idempotent. Callers that retry must pass an
// idempotency key; a repeated key returns the original transaction
// without applying the delta again.
func Deposit(accountID uuid.UUID, amount decimal.Decimal, reference string, idempotencyKey string) (BankTransaction, error) {
	if !amount.IsPositive() {
		return BankTransaction{}, ErrAmountNotPositive
	}

	var transaction BankTransaction
	err := DB.Transaction(func(tx *gorm.DB) error {
		if done, err := replayedTransaction(tx, idempotencyKey, &transaction); done || err != nil {
			return err
		}

		transaction = BankTransaction{
			Type:           BankDeposit,
			AccountID:      accountID,
			Amount:         amount,
			Reference:      reference,
			IdempotencyKey: nullable(idempotencyKey),
		}

		if err := tx.First(&BankAccount{}, "id = ?", accountID).Error; err != nil {
			return err
		}

		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		return applyBalanceDelta(tx, accountID, amount)
	})

	return resolveIdempotencyRace(transaction, idempotencyKey, err)
}

// Withdraw books a withdrawal and decrements the account balance, both in
// one transaction. When the allow_overdraft setting is off, a resulting
// negative balance fails the whole operation.
func Withdraw(accountID uuid.UUID, amount decimal.Decimal, reference string, idempotencyKey string) (BankTransaction, error) {
	if !amount.IsPositive() {
		return BankTransaction{}, ErrAmountNotPositive
	}

	allowOverdraft := settingBool(SettingAllowOverdraft)

	var transaction BankTransaction
	err := DB.Transaction(func(tx *gorm.DB) error {
		if done, err := replayedTransaction(tx, idempotencyKey, &transaction); done || err != nil {
			return err
		}

		transaction = BankTransaction{
			Type:           BankWithdrawal,
			AccountID:      accountID,
			Amount:         amount,
			Reference:      reference,
			IdempotencyKey: nullable(idempotencyKey),
		}

		if err := tx.First(&BankAccount{}, "id = ?", accountID).Error; err != nil {
			return err
		}

		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		if err := applyBalanceDelta(tx, accountID, amount.Neg()); err != nil {
			return err
		}

		if !allowOverdraft {
			return checkOverdraft(tx, accountID)
		}

		return nil
	})

	return resolveIdempotencyRace(transaction, idempotencyKey, err)
}

// Transfer moves money between two bank accounts.
//
// The transaction row and both balance changes are committed together or
// not at all. The two accounts are always touched in ascending ID order
// so that two concurrent transfers over the same pair in opposite
// directions can not deadlock.
func Transfer(fromID, toID uuid.UUID, amount decimal.Decimal, reference string) (BankTransaction, error) {
	if !amount.IsPositive() {
		return BankTransaction{}, ErrAmountNotPositive
	}
	if fromID == toID {
		return BankTransaction{}, ErrTransferSameAccount
	}

	allowOverdraft := settingBool(SettingAllowOverdraft)

	var transaction BankTransaction
	err := DB.Transaction(func(tx *gorm.DB) error {
		for _, id := range []uuid.UUID{fromID, toID} {
			if err := tx.First(&BankAccount{}, "id = ?", id).Error; err != nil {
				return err
			}
		}

		transaction = BankTransaction{
			Type:          BankTransfer,
			AccountID:     fromID,
			DestinationID: &toID,
			Amount:        amount,
			Reference:     reference,
		}

		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}

		// Fixed global ordering over the two rows
		deltas := map[uuid.UUID]decimal.Decimal{
			fromID: amount.Neg(),
			toID:   amount,
		}
		for _, id := range orderedIDs(fromID, toID) {
			if err := applyBalanceDelta(tx, id, deltas[id]); err != nil {
				return err
			}
		}

		if !allowOverdraft {
			return checkOverdraft(tx, fromID)
		}

		return nil
	})

	return transaction, err
}

// applyBalanceDelta adjusts the cached balance relative to its stored
// value, never from a value read earlier in the transaction.
func applyBalanceDelta(tx *gorm.DB, accountID uuid.UUID, delta decimal.Decimal) error {
	res := tx.Model(&BankAccount{}).
		Where("id = ?", accountID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return tx.First(&BankAccount{}, "id = ?", accountID).Error
	}

	return nil
}

func checkOverdraft(tx *gorm.DB, accountID uuid.UUID) error {
	var account BankAccount
	if err := tx.First(&account, "id = ?", accountID).Error; err != nil {
		return err
	}

	if account.CurrentBalance.IsNegative() {
		return ErrInsufficientFunds
	}

	return nil
}

// resolveIdempotencyRace turns a lost insert race over an idempotency key
// into a replay. When two calls with the same fresh key run concurrently,
// both miss the lookup and the loser's insert hits the unique index. The
// winner's transaction is the result the loser promised its caller.
func resolveIdempotencyRace(transaction BankTransaction, key string, err error) (BankTransaction, error) {
	if err == nil || key == "" || !errors.Is(err, ErrIdempotencyKeyInUse) {
		return transaction, err
	}

	var winner BankTransaction
	if lookupErr := DB.First(&winner, "idempotency_key = ?", key).Error; lookupErr != nil {
		return transaction, err
	}

	return winner, nil
}

// replayedTransaction loads the transaction a previous call with the same
// idempotency key created. It reports true when the operation is a replay.
func replayedTransaction(tx *gorm.DB, key string, transaction *BankTransaction) (bool, error) {
	if key == "" {
		return false, nil
	}

	err := tx.First(transaction, "idempotency_key = ?", key).Error
	if err == nil {
		return true, nil
	}

	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return false, err
}

func orderedIDs(a, b uuid.UUID) []uuid.UUID {
	if a.String() < b.String() {
		return []uuid.UUID{a, b}
	}
	return []uuid.UUID{b, a}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// BalanceDrift is the result of a bank account reconciliation.
type BalanceDrift struct {
	AccountID       uuid.UUID       `json:"accountId"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Drift           decimal.Decimal `json:"drift"`
}

// RecomputeBankBalance recomputes a bank account's balance from the
// opening balance and the full transaction history and reports the drift
// against the cached value. An audit tool, not the hot path.
func RecomputeBankBalance(accountID uuid.UUID) (BalanceDrift, error) {
	var account BankAccount
	if err := DB.First(&account, "id = ?", accountID).Error; err != nil {
		return BalanceDrift{}, err
	}

	var transactions []BankTransaction
	err := DB.
		Where(BankTransaction{AccountID: accountID}).
		Or(BankTransaction{DestinationID: &accountID}).
		Find(&transactions).Error
	if err != nil {
		return BalanceDrift{}, err
	}

	computed := account.OpeningBalance
	for _, t := range transactions {
		switch {
		case t.Type == BankDeposit && t.AccountID == accountID:
			computed = computed.Add(t.Amount)
		case t.Type == BankWithdrawal && t.AccountID == accountID:
			computed = computed.Sub(t.Amount)
		case t.Type == BankTransfer && t.AccountID == accountID:
			computed = computed.Sub(t.Amount)
		case t.Type == BankTransfer && t.DestinationID != nil && *t.DestinationID == accountID:
			computed = computed.Add(t.Amount)
		}
	}

	return BalanceDrift{
		AccountID:       accountID,
		StoredBalance:   account.CurrentBalance,
		ComputedBalance: computed,
		Drift:           account.CurrentBalance.Sub(computed),
	}, nil
}
