package models

import (
	"errors"
	"fmt"
)

// Base errors. Every error returned by this package wraps exactly one of
// them so that callers can map it to their own error handling without
// inspecting messages.
var (
	// ErrNotFound is extended with the resource name by the query callback,
	// producing messages like "there is no account matching your query".
	ErrNotFound     = errors.New("there is no")
	ErrConflict     = errors.New("the request conflicts with the current state")
	ErrInvalidInput = errors.New("the request is invalid")
	ErrUnavailable  = errors.New("an error occurred on the server during your request")
)

// Account errors
var (
	ErrAccountCodeNotUnique = fmt.Errorf("%w: the account code is already in use", ErrConflict)
	ErrAccountTypeInvalid   = fmt.Errorf("%w: the account type must be one of asset, liability, income, expense, equity", ErrInvalidInput)
	ErrAccountParentCycle   = fmt.Errorf("%w: the parent account must not create a cycle", ErrInvalidInput)
)

// FinancialYear errors
var (
	ErrFinancialYearDates      = fmt.Errorf("%w: the financial year must start before it ends", ErrInvalidInput)
	ErrFinancialYearClosed     = fmt.Errorf("%w: a closed financial year can not be set as current", ErrConflict)
	ErrFinancialYearReferenced = fmt.Errorf("%w: the financial year is referenced by budgets or ledger records", ErrConflict)
)

// Budget errors
var (
	ErrBudgetNameRequired    = fmt.Errorf("%w: the budget name must be set", ErrInvalidInput)
	ErrBudgetSpent           = fmt.Errorf("%w: budgets with a spent amount can not be deleted", ErrConflict)
	ErrBudgetItemSpent       = fmt.Errorf("%w: budget items with a spent amount can not be deleted", ErrConflict)
	ErrAllocationPeriod      = fmt.Errorf("%w: the allocation period must start before it ends", ErrInvalidInput)
	ErrAllocationOutsideYear = fmt.Errorf("%w: the allocation period must lie within the budget's financial year", ErrInvalidInput)
)

// Ledger errors
var (
	ErrAmountNotPositive       = fmt.Errorf("%w: the amount must be larger than zero", ErrInvalidInput)
	ErrVatAmountNegative       = fmt.Errorf("%w: the VAT amount must not be negative", ErrInvalidInput)
	ErrReferenceNotUnique      = fmt.Errorf("%w: an income record with this reference already exists", ErrConflict)
	ErrRejectionReasonRequired = fmt.Errorf("%w: a rejection reason must be given", ErrInvalidInput)
)

// Bank errors
var (
	ErrTransferSameAccount         = fmt.Errorf("%w: source and destination account must be different", ErrInvalidInput)
	ErrTransferDestinationRequired = fmt.Errorf("%w: transfers must have a destination account", ErrInvalidInput)
	ErrInsufficientFunds           = fmt.Errorf("%w: the account balance does not cover this operation", ErrConflict)
	ErrBankTransactionImmutable    = fmt.Errorf("%w: bank transactions can not be changed, create a correcting transaction instead", ErrConflict)
	ErrIdempotencyKeyInUse         = fmt.Errorf("%w: a bank transaction with this idempotency key already exists", ErrConflict)
	ErrCurrencyInvalid             = fmt.Errorf("%w: the currency must be a valid ISO 4217 code", ErrInvalidInput)
)

// Petty cash errors
var (
	ErrCustodianRequired         = fmt.Errorf("%w: the custodian must be set", ErrInvalidInput)
	ErrPettyCashEntryTypeInvalid = fmt.Errorf("%w: the entry type must be replenishment or disbursement", ErrInvalidInput)
)

// Settings errors
var (
	ErrSettingKeyUnknown = fmt.Errorf("%w: unknown setting key", ErrInvalidInput)
	ErrSettingValue      = fmt.Errorf("%w: the setting value can not be parsed", ErrInvalidInput)
)
