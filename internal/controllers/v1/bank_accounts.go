package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type BankAccountListResponse struct {
	Data []models.BankAccount `json:"data"`
}

type BankAccountResponse struct {
	Data models.BankAccount `json:"data"`
}

type BankTransactionListResponse struct {
	Data []models.BankTransaction `json:"data"`
}

type BankTransactionResponse struct {
	Data models.BankTransaction `json:"data"`
}

type BalanceDriftResponse struct {
	Data models.BalanceDrift `json:"data"`
}

// MovementRequest is the request body for deposits and withdrawals.
type MovementRequest struct {
	Amount         decimal.Decimal `json:"amount" example:"2500"`
	Reference      string          `json:"reference" example:"DEP-2024-001"`
	IdempotencyKey string          `json:"idempotencyKey" example:"9f2c7f4e-deposit-1"`
}

// TransferRequest is the request body for bank transfers.
type TransferRequest struct {
	FromID    uuid.UUID       `json:"fromId"`
	ToID      uuid.UUID       `json:"toId"`
	Amount    decimal.Decimal `json:"amount" example:"300"`
	Reference string          `json:"reference" example:"TRF-2024-001"`
}

// RegisterBankAccountRoutes registers the routes for bank accounts with
// the RouterGroup that is passed.
func RegisterBankAccountRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsBankAccountList)
		r.GET("", GetBankAccounts)
		r.POST("", CreateBankAccount)
	}

	// Bank account with ID
	{
		r.OPTIONS("/:id", OptionsBankAccountDetail)
		r.GET("/:id", GetBankAccount)

		r.POST("/:id/deposit", DepositBankAccount)
		r.OPTIONS("/:id/deposit", httputil.OptionsPost)
		r.POST("/:id/withdraw", WithdrawBankAccount)
		r.OPTIONS("/:id/withdraw", httputil.OptionsPost)

		r.GET("/:id/transactions", GetBankTransactions)
		r.OPTIONS("/:id/transactions", httputil.OptionsGet)
		r.GET("/:id/reconciliation", GetBankReconciliation)
		r.OPTIONS("/:id/reconciliation", httputil.OptionsGet)
	}
}

// RegisterTransferRoutes registers the routes for bank transfers with
// the RouterGroup that is passed.
func RegisterTransferRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", CreateTransfer)
}

func OptionsBankAccountList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsBankAccountDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGet(c)
}

// CreateBankAccount opens a bank account
//
//	@Summary		Create bank account
//	@Description	Opens a bank account. The current balance starts at the opening balance.
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		201		{object}	BankAccountResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Param			account	body		models.BankAccount	true	"BankAccount"
//	@Router			/v1/bank-accounts [post]
func CreateBankAccount(c *gin.Context) {
	var account models.BankAccount
	if err := httputil.BindData(c, &account); err != nil {
		httputil.Error(c, err)
		return
	}

	account, err := models.CreateBankAccount(account)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BankAccountResponse{Data: account})
}

// GetBankAccounts returns all bank accounts
//
//	@Summary		List bank accounts
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		200	{object}	BankAccountListResponse
//	@Router			/v1/bank-accounts [get]
func GetBankAccounts(c *gin.Context) {
	var accounts []models.BankAccount
	if err := models.DB.Order("name ASC").Find(&accounts).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BankAccountListResponse{Data: accounts})
}

// GetBankAccount returns a single bank account
//
//	@Summary		Get bank account
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		200	{object}	BankAccountResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/bank-accounts/{id} [get]
func GetBankAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var account models.BankAccount
	if err := models.DB.First(&account, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BankAccountResponse{Data: account})
}

// DepositBankAccount books a deposit
//
//	@Summary		Deposit
//	@Description	Books a deposit and increments the balance in one transaction. Pass an idempotency key to make retries safe.
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		201			{object}	BankTransactionResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Param			id			path		string			true	"ID formatted as string"
//	@Param			movement	body		MovementRequest	true	"Movement"
//	@Router			/v1/bank-accounts/{id}/deposit [post]
func DepositBankAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var movement MovementRequest
	if err := httputil.BindData(c, &movement); err != nil {
		httputil.Error(c, err)
		return
	}

	transaction, err := models.Deposit(id, movement.Amount, movement.Reference, movement.IdempotencyKey)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BankTransactionResponse{Data: transaction})
}

// WithdrawBankAccount books a withdrawal
//
//	@Summary		Withdraw
//	@Description	Books a withdrawal and decrements the balance in one transaction. Fails on insufficient funds when overdrafts are disabled.
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		201			{object}	BankTransactionResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		409			{object}	httputil.HTTPError
//	@Param			id			path		string			true	"ID formatted as string"
//	@Param			movement	body		MovementRequest	true	"Movement"
//	@Router			/v1/bank-accounts/{id}/withdraw [post]
func WithdrawBankAccount(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var movement MovementRequest
	if err := httputil.BindData(c, &movement); err != nil {
		httputil.Error(c, err)
		return
	}

	transaction, err := models.Withdraw(id, movement.Amount, movement.Reference, movement.IdempotencyKey)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BankTransactionResponse{Data: transaction})
}

// CreateTransfer moves money between two bank accounts
//
//	@Summary		Transfer
//	@Description	Moves money between two bank accounts. Both balance changes and the transaction row commit together or not at all.
//	@Tags			Transfers
//	@Produce		json
//	@Success		201			{object}	BankTransactionResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		409			{object}	httputil.HTTPError
//	@Param			transfer	body		TransferRequest	true	"Transfer"
//	@Router			/v1/transfers [post]
func CreateTransfer(c *gin.Context) {
	var transfer TransferRequest
	if err := httputil.BindData(c, &transfer); err != nil {
		httputil.Error(c, err)
		return
	}

	transaction, err := models.Transfer(transfer.FromID, transfer.ToID, transfer.Amount, transfer.Reference)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BankTransactionResponse{Data: transaction})
}

// GetBankTransactions returns the transactions touching a bank account
//
//	@Summary		List bank transactions
//	@Description	Returns all transactions where the account is the source or the transfer destination, newest first
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		200	{object}	BankTransactionListResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/bank-accounts/{id}/transactions [get]
func GetBankTransactions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DB.First(&models.BankAccount{}, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	var transactions []models.BankTransaction
	err := models.DB.
		Where("account_id = ? OR destination_id = ?", id, id).
		Order("date DESC").
		Find(&transactions).Error
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BankTransactionListResponse{Data: transactions})
}

// GetBankReconciliation reconciles a bank account balance
//
//	@Summary		Reconcile bank account
//	@Description	Recomputes the balance from the full transaction history and reports the drift against the cached value
//	@Tags			BankAccounts
//	@Produce		json
//	@Success		200	{object}	BalanceDriftResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/bank-accounts/{id}/reconciliation [get]
func GetBankReconciliation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	drift, err := models.RecomputeBankBalance(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceDriftResponse{Data: drift})
}
