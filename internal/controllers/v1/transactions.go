package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type IncomeListResponse struct {
	Data []models.IncomeRecord `json:"data"`
}

type IncomeResponse struct {
	Data models.IncomeRecord `json:"data"`
}

type ExpenseListResponse struct {
	Data []models.ExpenseRecord `json:"data"`
}

type ExpenseResponse struct {
	Data models.ExpenseRecord `json:"data"`
}

type CategoryTotalListResponse struct {
	Data []models.CategoryTotal `json:"data"`
}

// RejectionRequest carries the mandatory reason for rejecting an expense.
type RejectionRequest struct {
	Reason string `json:"reason" example:"Duplicate of EXP-2041"`
}

// RegisterIncomeRoutes registers the routes for income records with the
// RouterGroup that is passed.
func RegisterIncomeRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsIncomeList)
		r.GET("", GetIncomes)
		r.POST("", CreateIncome)
	}

	r.GET("/by-category", GetIncomeByCategory)
	r.OPTIONS("/by-category", httputil.OptionsGet)

	// Income with ID
	{
		r.OPTIONS("/:id", OptionsIncomeDetail)
		r.GET("/:id", GetIncome)
	}
}

// RegisterExpenseRoutes registers the routes for expense records with
// the RouterGroup that is passed.
func RegisterExpenseRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsExpenseList)
		r.GET("", GetExpenses)
		r.POST("", CreateExpense)
	}

	r.GET("/by-category", GetExpensesByCategory)
	r.OPTIONS("/by-category", httputil.OptionsGet)

	// Expense with ID
	{
		r.OPTIONS("/:id", OptionsExpenseDetail)
		r.GET("/:id", GetExpense)

		r.POST("/:id/approve", ApproveExpense)
		r.OPTIONS("/:id/approve", httputil.OptionsPost)
		r.POST("/:id/reject", RejectExpense)
		r.OPTIONS("/:id/reject", httputil.OptionsPost)
		r.POST("/:id/pay", PayExpense)
		r.OPTIONS("/:id/pay", httputil.OptionsPost)
	}
}

func OptionsIncomeList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsIncomeDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGet(c)
}

func OptionsExpenseList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsExpenseDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGet(c)
}

// CreateIncome books an income record
//
//	@Summary		Create income
//	@Description	Books an income record. Income is always completed, there is no approval gate.
//	@Tags			Incomes
//	@Produce		json
//	@Success		201		{object}	IncomeResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Failure		409		{object}	httputil.HTTPError
//	@Param			income	body		models.IncomeRecord	true	"Income"
//	@Router			/v1/incomes [post]
func CreateIncome(c *gin.Context) {
	var income models.IncomeRecord
	if err := httputil.BindData(c, &income); err != nil {
		httputil.Error(c, err)
		return
	}

	income, err := models.CreateIncome(income)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, IncomeResponse{Data: income})
}

// GetIncomes returns all income records
//
//	@Summary		List incomes
//	@Description	Returns all income records, newest first
//	@Tags			Incomes
//	@Produce		json
//	@Success		200	{object}	IncomeListResponse
//	@Router			/v1/incomes [get]
func GetIncomes(c *gin.Context) {
	var incomes []models.IncomeRecord
	if err := models.DB.Order("date DESC").Find(&incomes).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, IncomeListResponse{Data: incomes})
}

// GetIncome returns a single income record
//
//	@Summary		Get income
//	@Tags			Incomes
//	@Produce		json
//	@Success		200	{object}	IncomeResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/incomes/{id} [get]
func GetIncome(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var income models.IncomeRecord
	if err := models.DB.First(&income, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, IncomeResponse{Data: income})
}

// GetIncomeByCategory returns income grouped by account
//
//	@Summary		Income by category
//	@Description	Returns completed income summed per account. An optional glob pattern filters by account code, e.g. "4-*".
//	@Tags			Incomes
//	@Produce		json
//	@Success		200	{object}	CategoryTotalListResponse
//	@Param			code	query	string	false	"Glob pattern matched against the account code"
//	@Router			/v1/incomes/by-category [get]
func GetIncomeByCategory(c *gin.Context) {
	totals, err := models.IncomeByCategory(c.Query("code"))
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryTotalListResponse{Data: totals})
}

// CreateExpense books an expense record
//
//	@Summary		Create expense
//	@Description	Books an expense record. Expenses at or above the approval threshold start pending, smaller ones are approved immediately.
//	@Tags			Expenses
//	@Produce		json
//	@Success		201		{object}	ExpenseResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Param			expense	body		models.ExpenseRecord	true	"Expense"
//	@Router			/v1/expenses [post]
func CreateExpense(c *gin.Context) {
	var expense models.ExpenseRecord
	if err := httputil.BindData(c, &expense); err != nil {
		httputil.Error(c, err)
		return
	}

	expense, err := models.CreateExpense(expense)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ExpenseResponse{Data: expense})
}

// GetExpenses returns all expense records
//
//	@Summary		List expenses
//	@Description	Returns all expense records, optionally filtered by status, newest first
//	@Tags			Expenses
//	@Produce		json
//	@Success		200	{object}	ExpenseListResponse
//	@Param			status	query	string	false	"Filter by status"
//	@Router			/v1/expenses [get]
func GetExpenses(c *gin.Context) {
	query := models.DB.Order("date DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var expenses []models.ExpenseRecord
	if err := query.Find(&expenses).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseListResponse{Data: expenses})
}

// GetExpense returns a single expense record
//
//	@Summary		Get expense
//	@Tags			Expenses
//	@Produce		json
//	@Success		200	{object}	ExpenseResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/expenses/{id} [get]
func GetExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var expense models.ExpenseRecord
	if err := models.DB.First(&expense, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Data: expense})
}

// ApproveExpense approves a pending expense
//
//	@Summary		Approve expense
//	@Description	Transitions an expense from pending to approved. Concurrent decisions resolve to exactly one winner.
//	@Tags			Expenses
//	@Produce		json
//	@Success		200			{object}	ExpenseResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		409			{object}	httputil.HTTPError
//	@Param			id			path		string			true	"ID formatted as string"
//	@Param			approval	body		ApprovalRequest	true	"Approval"
//	@Router			/v1/expenses/{id}/approve [post]
func ApproveExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var approval ApprovalRequest
	if err := httputil.BindData(c, &approval); err != nil {
		httputil.Error(c, err)
		return
	}

	expense, err := models.ApproveExpense(id, approval.ApproverID)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Data: expense})
}

// RejectExpense rejects a pending expense
//
//	@Summary		Reject expense
//	@Description	Transitions an expense from pending to rejected. The reason is mandatory.
//	@Tags			Expenses
//	@Produce		json
//	@Success		200			{object}	ExpenseResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		409			{object}	httputil.HTTPError
//	@Param			id			path		string				true	"ID formatted as string"
//	@Param			rejection	body		RejectionRequest	true	"Rejection"
//	@Router			/v1/expenses/{id}/reject [post]
func RejectExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var rejection RejectionRequest
	if err := httputil.BindData(c, &rejection); err != nil {
		httputil.Error(c, err)
		return
	}

	expense, err := models.RejectExpense(id, rejection.Reason)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Data: expense})
}

// PayExpense marks an approved expense as paid
//
//	@Summary		Pay expense
//	@Description	Transitions an expense from approved to paid
//	@Tags			Expenses
//	@Produce		json
//	@Success		200	{object}	ExpenseResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/expenses/{id}/pay [post]
func PayExpense(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	expense, err := models.PayExpense(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpenseResponse{Data: expense})
}

// GetExpensesByCategory returns expenses grouped by account
//
//	@Summary		Expenses by category
//	@Description	Returns approved and paid expenses summed per account. An optional glob pattern filters by account code.
//	@Tags			Expenses
//	@Produce		json
//	@Success		200	{object}	CategoryTotalListResponse
//	@Param			code	query	string	false	"Glob pattern matched against the account code"
//	@Router			/v1/expenses/by-category [get]
func GetExpensesByCategory(c *gin.Context) {
	totals, err := models.ExpensesByCategory(c.Query("code"))
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryTotalListResponse{Data: totals})
}
