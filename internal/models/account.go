package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// AccountType classifies an account in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeEquity    AccountType = "equity"
)

var accountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeIncome,
	AccountTypeExpense,
	AccountTypeEquity,
}

// Account represents an account in the chart of accounts.
//
// Accounts are never deleted since historical ledger records reference
// them. They are archived instead.
type Account struct {
	DefaultModel
	Code     string      `gorm:"uniqueIndex"`
	Name     string
	Type     AccountType
	Note     string
	ParentID *uuid.UUID
	Parent   *Account `json:"-"`
	Archived bool
}

// BeforeSave trims whitespace from all strings
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Code = strings.TrimSpace(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	return nil
}

// CreateAccount adds an account to the chart of accounts.
func CreateAccount(account Account) (Account, error) {
	if !slices.Contains(accountTypes, account.Type) {
		return account, ErrAccountTypeInvalid
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		if account.ParentID != nil {
			if err := tx.First(&Account{}, "id = ?", *account.ParentID).Error; err != nil {
				return err
			}
		}

		return tx.Create(&account).Error
	})

	return account, err
}

// UpdateAccount applies an update to an account. The parent reference is
// verified to exist and to not introduce a cycle in the account tree.
func UpdateAccount(id uuid.UUID, update Account) (Account, error) {
	var account Account

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ?", id).Error; err != nil {
			return err
		}

		if update.Type != "" && !slices.Contains(accountTypes, update.Type) {
			return ErrAccountTypeInvalid
		}

		if update.ParentID != nil {
			if err := checkParentCycle(tx, id, *update.ParentID); err != nil {
				return err
			}
		}

		return tx.Model(&account).Updates(update).Error
	})

	return account, err
}

// ArchiveAccount marks an account as archived. This is always permitted,
// historical integrity is preserved by never deleting accounts.
func ArchiveAccount(id uuid.UUID) (Account, error) {
	var account Account

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ?", id).Error; err != nil {
			return err
		}

		return tx.Model(&account).Update("archived", true).Error
	})

	return account, err
}

// checkParentCycle walks up the account tree from the new parent and
// verifies that the account itself is never encountered.
func checkParentCycle(tx *gorm.DB, id, parentID uuid.UUID) error {
	current := parentID
	for {
		if current == id {
			return ErrAccountParentCycle
		}

		var parent Account
		if err := tx.First(&parent, "id = ?", current).Error; err != nil {
			return fmt.Errorf("%w: parent %s", err, current)
		}

		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
}
