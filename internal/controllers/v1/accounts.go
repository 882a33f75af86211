package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type AccountListResponse struct {
	Data []models.Account `json:"data"`
}

type AccountResponse struct {
	Data models.Account `json:"data"`
}

type AccountQueryFilter struct {
	Type     string `form:"type"`
	Archived bool   `form:"archived"`
}

// RegisterAccountRoutes registers the routes for the chart of accounts
// with the RouterGroup that is passed.
func RegisterAccountRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsAccountList)
		r.GET("", GetAccounts)
		r.POST("", CreateAccount)
	}

	// Account with ID
	{
		r.OPTIONS("/:id", OptionsAccountDetail)
		r.GET("/:id", GetAccount)
		r.PATCH("/:id", UpdateAccount)
		r.DELETE("/:id", ArchiveAccount)
	}
}

// OptionsAccountList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Accounts
//	@Success		204
//	@Router			/v1/accounts [options]
func OptionsAccountList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsAccountDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Accounts
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/accounts/{id} [options]
func OptionsAccountDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// CreateAccount creates a new account in the chart of accounts
//
//	@Summary		Create account
//	@Description	Creates a new account in the chart of accounts
//	@Tags			Accounts
//	@Produce		json
//	@Success		201		{object}	AccountResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		409		{object}	httputil.HTTPError
//	@Param			account	body		models.Account	true	"Account"
//	@Router			/v1/accounts [post]
func CreateAccount(c *gin.Context) {
	var account models.Account
	if err := httputil.BindData(c, &account); err != nil {
		httputil.Error(c, err)
		return
	}

	account, err := models.CreateAccount(account)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, AccountResponse{Data: account})
}

// GetAccounts returns the chart of accounts
//
//	@Summary		List accounts
//	@Description	Returns the chart of accounts, optionally filtered by type
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	AccountListResponse
//	@Param			type		query	string	false	"Filter by account type"
//	@Param			archived	query	bool	false	"Include archived accounts"
//	@Router			/v1/accounts [get]
func GetAccounts(c *gin.Context) {
	var filter AccountQueryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		httputil.Error(c, httputil.ErrInvalidBody)
		return
	}

	query := models.DB.Order("code ASC")
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if !filter.Archived {
		query = query.Where("archived = ?", false)
	}

	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountListResponse{Data: accounts})
}

// GetAccount returns a single account
//
//	@Summary		Get account
//	@Description	Returns a specific account
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	AccountResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/accounts/{id} [get]
func GetAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var account models.Account
	if err := models.DB.First(&account, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{Data: account})
}

// UpdateAccount updates an account
//
//	@Summary		Update account
//	@Description	Updates an existing account. Only values to be updated need to be specified.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200		{object}	AccountResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Param			id		path		string			true	"ID formatted as string"
//	@Param			account	body		models.Account	true	"Account"
//	@Router			/v1/accounts/{id} [patch]
func UpdateAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var update models.Account
	if err := httputil.BindData(c, &update); err != nil {
		httputil.Error(c, err)
		return
	}

	account, err := models.UpdateAccount(id, update)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{Data: account})
}

// ArchiveAccount archives an account
//
//	@Summary		Archive account
//	@Description	Archives an account. Accounts are never deleted since ledger history references them.
//	@Tags			Accounts
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/accounts/{id} [delete]
func ArchiveAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if _, err := models.ArchiveAccount(id); err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusNoContent, gin.H{})
}
