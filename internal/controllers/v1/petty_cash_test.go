package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"

	v1 "github.com/shulebooks/backend/internal/controllers/v1"
	"github.com/shulebooks/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestPettyCashEndpoints() {
	recorder := suite.Request(http.MethodPost, "/v1/petty-cash", map[string]any{
		"custodian": "Front Office",
		"type":      "replenishment",
		"amount":    "1000",
	})
	suite.assertHTTPStatus(&recorder, http.StatusCreated)

	recorder = suite.Request(http.MethodPost, "/v1/petty-cash", map[string]any{
		"custodian": "Front Office",
		"type":      "disbursement",
		"amount":    "250",
		"category":  "Stationery",
	})
	suite.assertHTTPStatus(&recorder, http.StatusCreated)

	var entry v1.PettyCashEntryResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &entry))
	assert.True(suite.T(), entry.Data.BalanceAfter.Equal(newDecimal("750")))

	recorder = suite.Request(http.MethodGet, "/v1/petty-cash/summary", "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var summary v1.PettyCashSummaryResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &summary))
	suite.Require().Len(summary.Data, 1)
	assert.True(suite.T(), summary.Data[0].CurrentBalance.Equal(newDecimal("750")))

	recorder = suite.Request(http.MethodGet, "/v1/petty-cash/audit?custodian=Front+Office", "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var audit v1.PettyCashAuditResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &audit))
	assert.Empty(suite.T(), audit.Data)
}

func (suite *TestSuiteStandard) TestPettyCashAuditRequiresCustodian() {
	recorder := suite.Request(http.MethodGet, "/v1/petty-cash/audit", "")
	suite.assertHTTPStatus(&recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestDeletePettyCashEntryRechains() {
	first, err := models.RecordPettyCashEntry(models.PettyCashEntry{
		Custodian: "Kitchen",
		Type:      models.PettyCashReplenishment,
		Amount:    newDecimal("1000"),
	})
	suite.Require().Nil(err)

	second, err := models.RecordPettyCashEntry(models.PettyCashEntry{
		Custodian: "Kitchen",
		Type:      models.PettyCashDisbursement,
		Amount:    newDecimal("300"),
	})
	suite.Require().Nil(err)

	recorder := suite.Request(http.MethodDelete, fmt.Sprintf("/v1/petty-cash/%s", second.ID), "")
	suite.assertHTTPStatus(&recorder, http.StatusNoContent)

	recorder = suite.Request(http.MethodGet, fmt.Sprintf("/v1/petty-cash/%s", first.ID), "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var response v1.PettyCashEntryResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.True(suite.T(), response.Data.BalanceAfter.Equal(newDecimal("1000")))
}
