package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type BudgetListResponse struct {
	Data []models.Budget `json:"data"`
}

type BudgetResponse struct {
	Data models.Budget `json:"data"`
}

type BudgetCreateResponse struct {
	Data BudgetCreateObject `json:"data"`
}

type BudgetCreateObject struct {
	Budget models.Budget       `json:"budget"`
	Items  []models.BudgetItem `json:"items"`
}

// BudgetCreate is the request body for creating a budget together with
// its initial line items.
type BudgetCreate struct {
	Budget models.Budget       `json:"budget"`
	Items  []models.BudgetItem `json:"items"`
}

type BudgetItemListResponse struct {
	Data []models.BudgetItem `json:"data"`
}

type BudgetItemResponse struct {
	Data models.BudgetItem `json:"data"`
}

type BudgetVarianceResponse struct {
	Data []models.BudgetItemVariance `json:"data"`
}

type BudgetSummaryResponse struct {
	Data models.BudgetSummary `json:"data"`
}

type AllocationListResponse struct {
	Data []models.BudgetAllocation `json:"data"`
}

type AllocationResponse struct {
	Data models.BudgetAllocation `json:"data"`
}

// ApprovalRequest carries the approver for budget and expense approvals.
type ApprovalRequest struct {
	ApproverID uuid.UUID `json:"approverId"`
}

// RegisterBudgetRoutes registers the routes for budgets with the
// RouterGroup that is passed.
func RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsBudgetList)
		r.GET("", GetBudgets)
		r.POST("", CreateBudget)
	}

	// Budget with ID
	{
		r.OPTIONS("/:id", OptionsBudgetDetail)
		r.GET("/:id", GetBudget)
		r.DELETE("/:id", DeleteBudget)

		r.POST("/:id/approve", ApproveBudget)
		r.OPTIONS("/:id/approve", httputil.OptionsPost)
		r.POST("/:id/activate", ActivateBudget)
		r.OPTIONS("/:id/activate", httputil.OptionsPost)
		r.POST("/:id/close", CloseBudget)
		r.OPTIONS("/:id/close", httputil.OptionsPost)

		r.GET("/:id/variance", GetBudgetVariance)
		r.OPTIONS("/:id/variance", httputil.OptionsGet)
		r.GET("/:id/summary", GetBudgetSummary)
		r.OPTIONS("/:id/summary", httputil.OptionsGet)

		r.GET("/:id/items", GetBudgetItems)
		r.OPTIONS("/:id/items", httputil.OptionsGet)
		r.GET("/:id/allocations", GetBudgetAllocations)
		r.OPTIONS("/:id/allocations", httputil.OptionsGet)
	}
}

// RegisterBudgetItemRoutes registers the routes for budget line items
// with the RouterGroup that is passed.
func RegisterBudgetItemRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", AddBudgetItem)

	r.OPTIONS("/:id", OptionsBudgetItemDetail)
	r.GET("/:id", GetBudgetItem)
	r.PATCH("/:id", UpdateBudgetItem)
	r.DELETE("/:id", DeleteBudgetItem)
}

// RegisterAllocationRoutes registers the routes for budget allocations
// with the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", CreateAllocation)

	r.OPTIONS("/:id", OptionsAllocationDetail)
	r.GET("/:id", GetAllocation)
	r.PATCH("/:id", UpdateAllocation)
}

// OptionsBudgetList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Budgets
//	@Success		204
//	@Router			/v1/budgets [options]
func OptionsBudgetList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsBudgetDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Budgets
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id} [options]
func OptionsBudgetDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGetDelete(c)
}

func OptionsBudgetItemDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

func OptionsAllocationDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGetPatch(c)
}

// CreateBudget creates a new budget
//
//	@Summary		Create budget
//	@Description	Creates a new budget in draft status together with its initial line items
//	@Tags			Budgets
//	@Produce		json
//	@Success		201		{object}	BudgetCreateResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Param			budget	body		BudgetCreate	true	"Budget"
//	@Router			/v1/budgets [post]
func CreateBudget(c *gin.Context) {
	var create BudgetCreate
	if err := httputil.BindData(c, &create); err != nil {
		httputil.Error(c, err)
		return
	}

	budget, items, err := models.CreateBudget(create.Budget, create.Items)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BudgetCreateResponse{Data: BudgetCreateObject{Budget: budget, Items: items}})
}

// GetBudgets returns all budgets
//
//	@Summary		List budgets
//	@Description	Returns all budgets, optionally filtered by financial year
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetListResponse
//	@Param			financialYear	query	string	false	"Filter by financial year ID"
//	@Router			/v1/budgets [get]
func GetBudgets(c *gin.Context) {
	yearID, err := httputil.UUIDFromString(c.Query("financialYear"))
	if err != nil {
		httputil.Error(c, err)
		return
	}

	query := models.DB.Order("created_at DESC")
	if yearID != uuid.Nil {
		query = query.Where("financial_year_id = ?", yearID)
	}

	var budgets []models.Budget
	if err := query.Find(&budgets).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetListResponse{Data: budgets})
}

// GetBudget returns a single budget
//
//	@Summary		Get budget
//	@Description	Returns a specific budget
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id} [get]
func GetBudget(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var budget models.Budget
	if err := models.DB.First(&budget, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// DeleteBudget deletes a budget
//
//	@Summary		Delete budget
//	@Description	Deletes a budget and its items. Fails once money has been spent against the budget.
//	@Tags			Budgets
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id} [delete]
func DeleteBudget(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DeleteBudget(id); err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusNoContent, gin.H{})
}

// ApproveBudget approves a draft budget
//
//	@Summary		Approve budget
//	@Description	Transitions a budget from draft to approved. Concurrent approvals resolve to exactly one winner.
//	@Tags			Budgets
//	@Produce		json
//	@Success		200			{object}	BudgetResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		409			{object}	httputil.HTTPError
//	@Param			id			path		string			true	"ID formatted as string"
//	@Param			approval	body		ApprovalRequest	true	"Approval"
//	@Router			/v1/budgets/{id}/approve [post]
func ApproveBudget(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var approval ApprovalRequest
	if err := httputil.BindData(c, &approval); err != nil {
		httputil.Error(c, err)
		return
	}

	budget, err := models.ApproveBudget(id, approval.ApproverID)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// ActivateBudget activates an approved budget
//
//	@Summary		Activate budget
//	@Description	Transitions a budget from approved to active
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id}/activate [post]
func ActivateBudget(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	budget, err := models.ActivateBudget(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// CloseBudget closes a budget
//
//	@Summary		Close budget
//	@Description	Transitions a budget from approved or active to closed
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id}/close [post]
func CloseBudget(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	budget, err := models.CloseBudget(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// GetBudgetVariance returns the variance report for a budget
//
//	@Summary		Budget variance report
//	@Description	Returns allocated minus spent for every item of the budget, with classification
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetVarianceResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id}/variance [get]
func GetBudgetVariance(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	report, err := models.BudgetVariance(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetVarianceResponse{Data: report})
}

// GetBudgetSummary returns the utilization summary for a budget
//
//	@Summary		Budget summary
//	@Description	Returns the budget's utilization and its spending grouped by account type
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetSummaryResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id}/summary [get]
func GetBudgetSummary(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	summary, err := models.GetBudgetSummary(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetSummaryResponse{Data: summary})
}

// GetBudgetItems returns the line items of a budget
//
//	@Summary		List budget items
//	@Description	Returns the line items of a budget
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	BudgetItemListResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id}/items [get]
func GetBudgetItems(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DB.First(&models.Budget{}, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	var items []models.BudgetItem
	if err := models.DB.Where("budget_id = ?", id).Order("created_at ASC").Find(&items).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetItemListResponse{Data: items})
}

// GetBudgetAllocations returns the period allocations of a budget
//
//	@Summary		List budget allocations
//	@Description	Returns the period allocations of a budget
//	@Tags			Budgets
//	@Produce		json
//	@Success		200	{object}	AllocationListResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budgets/{id}/allocations [get]
func GetBudgetAllocations(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DB.First(&models.Budget{}, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	var allocations []models.BudgetAllocation
	if err := models.DB.Where("budget_id = ?", id).Order("period_start ASC").Find(&allocations).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: allocations})
}

// AddBudgetItem adds a line item to a budget
//
//	@Summary		Add budget item
//	@Description	Adds a line item to a budget and recomputes the budget's spent amount
//	@Tags			BudgetItems
//	@Produce		json
//	@Success		201		{object}	BudgetItemResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Param			item	body		models.BudgetItem	true	"BudgetItem"
//	@Router			/v1/budget-items [post]
func AddBudgetItem(c *gin.Context) {
	var item models.BudgetItem
	if err := httputil.BindData(c, &item); err != nil {
		httputil.Error(c, err)
		return
	}

	item, err := models.AddBudgetItem(item)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BudgetItemResponse{Data: item})
}

// GetBudgetItem returns a single budget item
//
//	@Summary		Get budget item
//	@Tags			BudgetItems
//	@Produce		json
//	@Success		200	{object}	BudgetItemResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budget-items/{id} [get]
func GetBudgetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var item models.BudgetItem
	if err := models.DB.First(&item, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetItemResponse{Data: item})
}

// UpdateBudgetItem updates a budget item
//
//	@Summary		Update budget item
//	@Description	Updates a line item's amounts and recomputes the budget's spent amount
//	@Tags			BudgetItems
//	@Produce		json
//	@Success		200		{object}	BudgetItemResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Param			id		path		string				true	"ID formatted as string"
//	@Param			item	body		models.BudgetItem	true	"BudgetItem"
//	@Router			/v1/budget-items/{id} [patch]
func UpdateBudgetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var update models.BudgetItem
	if err := httputil.BindData(c, &update); err != nil {
		httputil.Error(c, err)
		return
	}

	item, err := models.UpdateBudgetItem(id, update)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetItemResponse{Data: item})
}

// DeleteBudgetItem deletes a budget item
//
//	@Summary		Delete budget item
//	@Description	Deletes a line item. Fails once the item carries spending.
//	@Tags			BudgetItems
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/budget-items/{id} [delete]
func DeleteBudgetItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DeleteBudgetItem(id); err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusNoContent, gin.H{})
}

// CreateAllocation creates a period allocation for a budget
//
//	@Summary		Create allocation
//	@Description	Creates a period allocation. The period must lie within the budget's financial year.
//	@Tags			Allocations
//	@Produce		json
//	@Success		201			{object}	AllocationResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Param			allocation	body		models.BudgetAllocation	true	"Allocation"
//	@Router			/v1/allocations [post]
func CreateAllocation(c *gin.Context) {
	var allocation models.BudgetAllocation
	if err := httputil.BindData(c, &allocation); err != nil {
		httputil.Error(c, err)
		return
	}

	allocation, err := models.CreateBudgetAllocation(allocation)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, AllocationResponse{Data: allocation})
}

// GetAllocation returns a single allocation
//
//	@Summary		Get allocation
//	@Tags			Allocations
//	@Produce		json
//	@Success		200	{object}	AllocationResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/allocations/{id} [get]
func GetAllocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var allocation models.BudgetAllocation
	if err := models.DB.First(&allocation, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AllocationResponse{Data: allocation})
}

// UpdateAllocation updates an allocation
//
//	@Summary		Update allocation
//	@Description	Updates an allocation. The variance is recomputed from the new amounts.
//	@Tags			Allocations
//	@Produce		json
//	@Success		200			{object}	AllocationResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Param			id			path		string					true	"ID formatted as string"
//	@Param			allocation	body		models.BudgetAllocation	true	"Allocation"
//	@Router			/v1/allocations/{id} [patch]
func UpdateAllocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var update models.BudgetAllocation
	if err := httputil.BindData(c, &update); err != nil {
		httputil.Error(c, err)
		return
	}

	allocation, err := models.UpdateBudgetAllocation(id, update)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AllocationResponse{Data: allocation})
}
