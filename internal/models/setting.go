package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/gorm"
)

// Setting keys understood by the finance backend.
const (
	SettingDefaultVatRate           = "default_vat_rate"           // percentage
	SettingExpenseApprovalThreshold = "expense_approval_threshold" // currency amount
	SettingDefaultCurrency          = "default_currency"           // ISO 4217 code
	SettingExpenseApprovalRequired  = "expense_approval_required"  // boolean
	SettingAllowOverdraft           = "allow_overdraft"            // boolean
	SettingFeeIncomeAccount         = "fee_income_account"         // account UUID the fee importer books against
)

// settingDefaults holds the policy defaults used when a setting has never
// been written.
var settingDefaults = map[string]string{
	SettingDefaultVatRate:           "16",
	SettingExpenseApprovalThreshold: "10000",
	SettingDefaultCurrency:          "KES",
	SettingExpenseApprovalRequired:  "true",
	SettingAllowOverdraft:           "true",
	SettingFeeIncomeAccount:         "",
}

// Setting is a key/value configuration entry maintained by administrators.
type Setting struct {
	DefaultModel
	Key   string `gorm:"uniqueIndex"`
	Value string
}

func (s *Setting) BeforeSave(_ *gorm.DB) error {
	s.Key = strings.TrimSpace(s.Key)
	s.Value = strings.TrimSpace(s.Value)
	return nil
}

// GetSetting returns the stored value for a key, falling back to the
// policy default when the key has never been written.
func GetSetting(key string) (string, error) {
	fallback, ok := settingDefaults[key]
	if !ok {
		return "", ErrSettingKeyUnknown
	}

	var setting Setting
	err := DB.First(&setting, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return "", err
	}

	return setting.Value, nil
}

// SetSetting validates and stores a setting value.
func SetSetting(key, value string) (Setting, error) {
	if _, ok := settingDefaults[key]; !ok {
		return Setting{}, ErrSettingKeyUnknown
	}

	value = strings.TrimSpace(value)
	if err := validateSetting(key, value); err != nil {
		return Setting{}, err
	}

	var setting Setting
	err := DB.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&setting, "key = ?", key).Error
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			setting = Setting{Key: key, Value: value}
			return tx.Create(&setting).Error
		}

		return tx.Model(&setting).Update("value", value).Error
	})

	return setting, err
}

func validateSetting(key, value string) error {
	switch key {
	case SettingDefaultVatRate, SettingExpenseApprovalThreshold:
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			return ErrSettingValue
		}
	case SettingExpenseApprovalRequired, SettingAllowOverdraft:
		if _, err := strconv.ParseBool(value); err != nil {
			return ErrSettingValue
		}
	case SettingDefaultCurrency:
		if _, err := currency.ParseISO(value); err != nil {
			return ErrCurrencyInvalid
		}
	case SettingFeeIncomeAccount:
		if _, err := uuid.Parse(value); err != nil {
			return ErrSettingValue
		}
	}

	return nil
}

// settingDecimal reads a numeric setting. Values are validated on write,
// so a parse failure can only mean the default applies.
func settingDecimal(key string) decimal.Decimal {
	value, err := GetSetting(key)
	if err != nil {
		value = settingDefaults[key]
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		d, _ = decimal.NewFromString(settingDefaults[key])
	}

	return d
}

func settingBool(key string) bool {
	value, err := GetSetting(key)
	if err != nil {
		value = settingDefaults[key]
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		b, _ = strconv.ParseBool(settingDefaults[key])
	}

	return b
}
