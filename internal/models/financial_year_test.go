package models_test

import (
	"time"

	"github.com/shulebooks/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestFinancialYearDatesValidated() {
	_, err := models.CreateFinancialYear(models.FinancialYear{
		Name:      "Backwards",
		StartDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(suite.T(), err, models.ErrFinancialYearDates)
}

func (suite *TestSuiteStandard) TestFinancialYearStartsDraft() {
	year := suite.createTestFinancialYear(models.FinancialYear{})

	assert.Equal(suite.T(), models.FinancialYearDraft, year.Status)
	assert.False(suite.T(), year.IsCurrent)
}

func (suite *TestSuiteStandard) TestFinancialYearCurrentFlagIsExclusive() {
	first := suite.createTestFinancialYear(models.FinancialYear{})
	second := suite.createTestFinancialYear(models.FinancialYear{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	})

	_, err := models.SetCurrentFinancialYear(first.ID)
	suite.Require().Nil(err)

	_, err = models.SetCurrentFinancialYear(second.ID)
	suite.Require().Nil(err)

	// Exactly one year carries the flag, and it is the second one
	var count int64
	suite.Require().Nil(models.DB.Model(&models.FinancialYear{}).Where("is_current = ?", true).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)

	current, err := models.CurrentFinancialYear()
	suite.Require().Nil(err)
	assert.Equal(suite.T(), second.ID, current.ID)
	assert.Equal(suite.T(), models.FinancialYearActive, current.Status)
}

func (suite *TestSuiteStandard) TestFinancialYearClosedCannotBecomeCurrent() {
	year := suite.createTestFinancialYear(models.FinancialYear{})
	suite.Require().Nil(models.DB.Model(&year).Update("status", models.FinancialYearClosed).Error)

	_, err := models.SetCurrentFinancialYear(year.ID)
	assert.ErrorIs(suite.T(), err, models.ErrFinancialYearClosed)
}

func (suite *TestSuiteStandard) TestFinancialYearDeleteReferenced() {
	year := suite.createTestFinancialYear(models.FinancialYear{})
	suite.createTestBudget(models.Budget{FinancialYearID: year.ID})

	err := models.DeleteFinancialYear(year.ID)
	assert.ErrorIs(suite.T(), err, models.ErrFinancialYearReferenced)

	// Without references the year deletes fine
	unreferenced := suite.createTestFinancialYear(models.FinancialYear{})
	assert.Nil(suite.T(), models.DeleteFinancialYear(unreferenced.ID))
}
