package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FinancialYearStatus string

const (
	FinancialYearDraft  FinancialYearStatus = "draft"
	FinancialYearActive FinancialYearStatus = "active"
	FinancialYearClosed FinancialYearStatus = "closed"
)

// FinancialYear is the calendar everything in the ledger is booked
// against. At most one financial year is current at any time.
type FinancialYear struct {
	DefaultModel
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    FinancialYearStatus
	IsCurrent bool
}

func (f *FinancialYear) BeforeSave(_ *gorm.DB) error {
	f.Name = strings.TrimSpace(f.Name)
	return nil
}

// CreateFinancialYear creates a financial year in draft status.
func CreateFinancialYear(year FinancialYear) (FinancialYear, error) {
	if !year.StartDate.Before(year.EndDate) {
		return year, ErrFinancialYearDates
	}

	if year.Status == "" {
		year.Status = FinancialYearDraft
	}

	// The current flag is only ever set through SetCurrentFinancialYear
	year.IsCurrent = false

	err := DB.Create(&year).Error
	return year, err
}

// SetCurrentFinancialYear marks one financial year as the current one.
//
// Clearing the flag on all other years and setting it on the target happens
// in one transaction so that there is no window with zero or multiple
// current years.
func SetCurrentFinancialYear(id uuid.UUID) (FinancialYear, error) {
	var year FinancialYear

	err := DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&year, "id = ?", id).Error; err != nil {
			return err
		}

		if year.Status == FinancialYearClosed {
			return ErrFinancialYearClosed
		}

		err := tx.Model(&FinancialYear{}).
			Where("is_current = ?", true).
			Update("is_current", false).Error
		if err != nil {
			return err
		}

		return tx.Model(&year).
			Updates(map[string]interface{}{
				"is_current": true,
				"status":     FinancialYearActive,
			}).Error
	})

	return year, err
}

// CurrentFinancialYear returns the financial year that is marked as
// current.
func CurrentFinancialYear() (FinancialYear, error) {
	var year FinancialYear
	err := DB.First(&year, "is_current = ?", true).Error
	return year, err
}

// DeleteFinancialYear removes a financial year. It fails once any budget
// or ledger record references the year.
func DeleteFinancialYear(id uuid.UUID) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var year FinancialYear
		if err := tx.First(&year, "id = ?", id).Error; err != nil {
			return err
		}

		var count int64
		err := tx.Model(&Budget{}).Where("financial_year_id = ?", id).Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return ErrFinancialYearReferenced
		}

		return tx.Delete(&year).Error
	})
}
