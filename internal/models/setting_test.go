package models_test

import (
	"github.com/shulebooks/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestSettingDefaults() {
	value, err := models.GetSetting(models.SettingDefaultVatRate)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), "16", value)

	value, err = models.GetSetting(models.SettingDefaultCurrency)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), "KES", value)

	value, err = models.GetSetting(models.SettingExpenseApprovalThreshold)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), "10000", value)
}

func (suite *TestSuiteStandard) TestSettingUnknownKey() {
	_, err := models.GetSetting("favorite_color")
	assert.ErrorIs(suite.T(), err, models.ErrSettingKeyUnknown)

	_, err = models.SetSetting("favorite_color", "teal")
	assert.ErrorIs(suite.T(), err, models.ErrSettingKeyUnknown)
}

func (suite *TestSuiteStandard) TestSettingWriteAndOverwrite() {
	setting, err := models.SetSetting(models.SettingDefaultVatRate, "18")
	suite.Require().Nil(err)
	assert.Equal(suite.T(), "18", setting.Value)

	value, err := models.GetSetting(models.SettingDefaultVatRate)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), "18", value)

	// Overwriting updates the existing row instead of creating a second one
	_, err = models.SetSetting(models.SettingDefaultVatRate, "20")
	suite.Require().Nil(err)

	var count int64
	suite.Require().Nil(models.DB.Model(&models.Setting{}).Where("key = ?", models.SettingDefaultVatRate).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestSettingValidation() {
	_, err := models.SetSetting(models.SettingDefaultVatRate, "sixteen")
	assert.ErrorIs(suite.T(), err, models.ErrSettingValue)

	_, err = models.SetSetting(models.SettingDefaultVatRate, "-1")
	assert.ErrorIs(suite.T(), err, models.ErrSettingValue)

	_, err = models.SetSetting(models.SettingAllowOverdraft, "maybe")
	assert.ErrorIs(suite.T(), err, models.ErrSettingValue)

	_, err = models.SetSetting(models.SettingDefaultCurrency, "SHILLINGS")
	assert.ErrorIs(suite.T(), err, models.ErrCurrencyInvalid)

	_, err = models.SetSetting(models.SettingFeeIncomeAccount, "not-a-uuid")
	assert.ErrorIs(suite.T(), err, models.ErrSettingValue)
}

func (suite *TestSuiteStandard) TestSettingCurrencyAccepted() {
	setting, err := models.SetSetting(models.SettingDefaultCurrency, "UGX")
	suite.Require().Nil(err)
	assert.Equal(suite.T(), "UGX", setting.Value)
}
