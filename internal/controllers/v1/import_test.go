package v1_test

import (
	"encoding/json"
	"net/http"

	v1 "github.com/shulebooks/backend/internal/controllers/v1"
	"github.com/shulebooks/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestImportFeePayments() {
	account := suite.createTestAccount(models.Account{Code: "4-1100", Type: models.AccountTypeIncome})
	_, err := models.SetSetting(models.SettingFeeIncomeAccount, account.ID.String())
	suite.Require().Nil(err)

	feed := map[string]any{
		"payments": []map[string]any{
			{"id": "P1", "studentId": "S-001", "amount": "11600", "status": "settled"},
			{"id": "P2", "studentId": "S-002", "amount": "5800", "status": "pending"},
		},
	}

	recorder := suite.Request(http.MethodPost, "/v1/import", feed)
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var response v1.ImportResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), 1, response.Data.Imported)
	assert.Equal(suite.T(), 0, response.Data.Skipped)

	// The same feed again books nothing new
	recorder = suite.Request(http.MethodPost, "/v1/import", feed)
	suite.assertHTTPStatus(&recorder, http.StatusOK)
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), 0, response.Data.Imported)
	assert.Equal(suite.T(), 1, response.Data.Skipped)

	var income models.IncomeRecord
	suite.Require().Nil(models.DB.First(&income, "reference = ?", "FEE-P1").Error)
	assert.True(suite.T(), income.Amount.Equal(newDecimal("10000")))
	assert.True(suite.T(), income.VatAmount.Equal(newDecimal("1600")))
}

func (suite *TestSuiteStandard) TestImportWithoutFeeAccountConfigured() {
	recorder := suite.Request(http.MethodPost, "/v1/import", map[string]any{
		"payments": []map[string]any{
			{"id": "P1", "studentId": "S-001", "amount": "100", "status": "settled"},
		},
	})
	suite.assertHTTPStatus(&recorder, http.StatusServiceUnavailable)
}

func (suite *TestSuiteStandard) TestSettingsEndpoint() {
	recorder := suite.Request(http.MethodGet, "/v1/settings/default_vat_rate", "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var response v1.SettingResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), "16", response.Data.Value)

	recorder = suite.Request(http.MethodPatch, "/v1/settings/default_vat_rate", map[string]any{"value": "18"})
	suite.assertHTTPStatus(&recorder, http.StatusOK)
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), "18", response.Data.Value)

	recorder = suite.Request(http.MethodPatch, "/v1/settings/default_currency", map[string]any{"value": "SHILLINGS"})
	suite.assertHTTPStatus(&recorder, http.StatusBadRequest)

	recorder = suite.Request(http.MethodGet, "/v1/settings/nonexistent", "")
	suite.assertHTTPStatus(&recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestFinancialYearCurrentEndpoint() {
	year := suite.createTestFinancialYearHTTP()

	// No current year yet
	recorder := suite.Request(http.MethodGet, "/v1/financial-years/current", "")
	suite.assertHTTPStatus(&recorder, http.StatusNotFound)

	recorder = suite.Request(http.MethodPost, "/v1/financial-years/"+year.ID.String()+"/current", "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	recorder = suite.Request(http.MethodGet, "/v1/financial-years/current", "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var response v1.FinancialYearResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), year.ID, response.Data.ID)
}
