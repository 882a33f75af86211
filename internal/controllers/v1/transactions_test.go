package v1_test

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	v1 "github.com/shulebooks/backend/internal/controllers/v1"
	"github.com/shulebooks/backend/internal/models"
	"github.com/shulebooks/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCreateIncome() {
	account := suite.createTestAccount(models.Account{Type: models.AccountTypeIncome})

	recorder := suite.Request(http.MethodPost, "/v1/incomes", map[string]any{
		"accountID": account.ID,
		"amount":    "10000",
		"vatAmount": "1600",
		"reference": "INC-1",
	})
	suite.assertHTTPStatus(&recorder, http.StatusCreated)

	var response v1.IncomeResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.IncomeCompleted, response.Data.Status)
}

func (suite *TestSuiteStandard) TestCreateIncomeDuplicateReference() {
	account := suite.createTestAccount(models.Account{Type: models.AccountTypeIncome})

	body := map[string]any{
		"accountID": account.ID,
		"amount":    "500",
		"reference": "INC-DUP",
	}

	recorder := suite.Request(http.MethodPost, "/v1/incomes", body)
	suite.assertHTTPStatus(&recorder, http.StatusCreated)

	recorder = suite.Request(http.MethodPost, "/v1/incomes", body)
	suite.assertHTTPStatus(&recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestExpenseWorkflow() {
	account := suite.createTestAccount(models.Account{})

	recorder := suite.Request(http.MethodPost, "/v1/expenses", map[string]any{
		"accountID": account.ID,
		"amount":    "50000",
	})
	suite.assertHTTPStatus(&recorder, http.StatusCreated)

	var created v1.ExpenseResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &created))
	suite.Require().Equal(models.ExpensePending, created.Data.Status)

	expenseID := created.Data.ID

	// Paying before approval is a conflict
	recorder = suite.Request(http.MethodPost, fmt.Sprintf("/v1/expenses/%s/pay", expenseID), "")
	suite.assertHTTPStatus(&recorder, http.StatusConflict)

	recorder = suite.Request(http.MethodPost, fmt.Sprintf("/v1/expenses/%s/approve", expenseID), map[string]any{
		"approverId": uuid.New(),
	})
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	recorder = suite.Request(http.MethodPost, fmt.Sprintf("/v1/expenses/%s/pay", expenseID), "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var paid v1.ExpenseResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &paid))
	assert.Equal(suite.T(), models.ExpensePaid, paid.Data.Status)
}

func (suite *TestSuiteStandard) TestExpenseRejectionRequiresReason() {
	expense, err := models.CreateExpense(models.ExpenseRecord{
		AccountID: suite.createTestAccount(models.Account{}).ID,
		Amount:    newDecimal("50000"),
	})
	suite.Require().Nil(err)

	recorder := suite.Request(http.MethodPost, fmt.Sprintf("/v1/expenses/%s/reject", expense.ID), map[string]any{
		"reason": "",
	})
	suite.assertHTTPStatus(&recorder, http.StatusBadRequest)
	assert.Contains(suite.T(), test.DecodeError(suite.T(), recorder.Body.Bytes()), "reason")

	recorder = suite.Request(http.MethodPost, fmt.Sprintf("/v1/expenses/%s/reject", expense.ID), map[string]any{
		"reason": "Wrong vendor",
	})
	suite.assertHTTPStatus(&recorder, http.StatusOK)
}

func (suite *TestSuiteStandard) TestSmallExpenseAutoApproved() {
	account := suite.createTestAccount(models.Account{})

	recorder := suite.Request(http.MethodPost, "/v1/expenses", map[string]any{
		"accountID": account.ID,
		"amount":    "500",
	})
	suite.assertHTTPStatus(&recorder, http.StatusCreated)

	var response v1.ExpenseResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.ExpenseApproved, response.Data.Status)
}

func (suite *TestSuiteStandard) TestIncomeByCategoryEndpoint() {
	tuition := suite.createTestAccount(models.Account{Code: "4-1100", Type: models.AccountTypeIncome})
	other := suite.createTestAccount(models.Account{Code: "9-0001", Type: models.AccountTypeIncome})

	for i, account := range []models.Account{tuition, other} {
		_, err := models.CreateIncome(models.IncomeRecord{
			AccountID: account.ID,
			Amount:    newDecimal("1000"),
			Reference: fmt.Sprintf("INC-%d", i),
		})
		suite.Require().Nil(err)
	}

	recorder := suite.Request(http.MethodGet, "/v1/incomes/by-category?code=4-*", "")
	suite.assertHTTPStatus(&recorder, http.StatusOK)

	var response v1.CategoryTotalListResponse
	suite.Require().Nil(json.Unmarshal(recorder.Body.Bytes(), &response))
	suite.Require().Len(response.Data, 1)
	assert.Equal(suite.T(), "4-1100", response.Data[0].AccountCode)
}
