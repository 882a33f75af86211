package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type PettyCashEntryListResponse struct {
	Data []models.PettyCashEntry `json:"data"`
}

type PettyCashEntryResponse struct {
	Data models.PettyCashEntry `json:"data"`
}

type PettyCashSummaryResponse struct {
	Data []models.CustodianSummary `json:"data"`
}

type PettyCashAuditResponse struct {
	Data []models.PettyCashMismatch `json:"data"`
}

// RegisterPettyCashRoutes registers the routes for the petty cash
// journal with the RouterGroup that is passed.
func RegisterPettyCashRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsPettyCashList)
		r.GET("", GetPettyCashEntries)
		r.POST("", CreatePettyCashEntry)
	}

	r.GET("/summary", GetPettyCashSummary)
	r.OPTIONS("/summary", httputil.OptionsGet)
	r.GET("/audit", GetPettyCashAudit)
	r.OPTIONS("/audit", httputil.OptionsGet)

	// Entry with ID
	{
		r.OPTIONS("/:id", OptionsPettyCashDetail)
		r.GET("/:id", GetPettyCashEntry)
		r.DELETE("/:id", DeletePettyCashEntry)
	}
}

func OptionsPettyCashList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsPettyCashDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGetDelete(c)
}

// CreatePettyCashEntry appends an entry to a custodian's journal
//
//	@Summary		Create petty cash entry
//	@Description	Appends a replenishment or disbursement to a custodian's journal. Balances are computed server-side.
//	@Tags			PettyCash
//	@Produce		json
//	@Success		201		{object}	PettyCashEntryResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Param			entry	body		models.PettyCashEntry	true	"Entry"
//	@Router			/v1/petty-cash [post]
func CreatePettyCashEntry(c *gin.Context) {
	var entry models.PettyCashEntry
	if err := httputil.BindData(c, &entry); err != nil {
		httputil.Error(c, err)
		return
	}

	entry, err := models.RecordPettyCashEntry(entry)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, PettyCashEntryResponse{Data: entry})
}

// GetPettyCashEntries returns petty cash entries
//
//	@Summary		List petty cash entries
//	@Description	Returns petty cash entries in chain order, optionally filtered by custodian
//	@Tags			PettyCash
//	@Produce		json
//	@Success		200	{object}	PettyCashEntryListResponse
//	@Param			custodian	query	string	false	"Filter by custodian"
//	@Router			/v1/petty-cash [get]
func GetPettyCashEntries(c *gin.Context) {
	query := models.DB.Order("custodian ASC").Order("sequence ASC")
	if custodian := c.Query("custodian"); custodian != "" {
		query = query.Where("custodian = ?", custodian)
	}

	var entries []models.PettyCashEntry
	if err := query.Find(&entries).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PettyCashEntryListResponse{Data: entries})
}

// GetPettyCashEntry returns a single petty cash entry
//
//	@Summary		Get petty cash entry
//	@Tags			PettyCash
//	@Produce		json
//	@Success		200	{object}	PettyCashEntryResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/petty-cash/{id} [get]
func GetPettyCashEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var entry models.PettyCashEntry
	if err := models.DB.First(&entry, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PettyCashEntryResponse{Data: entry})
}

// DeletePettyCashEntry deletes a petty cash entry
//
//	@Summary		Delete petty cash entry
//	@Description	Deletes an entry and recomputes the balance chain of all later entries for the custodian
//	@Tags			PettyCash
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/petty-cash/{id} [delete]
func DeletePettyCashEntry(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DeletePettyCashEntry(id); err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusNoContent, gin.H{})
}

// GetPettyCashSummary returns the per-custodian summary
//
//	@Summary		Petty cash summary
//	@Description	Returns replenished, disbursed and current balance per custodian
//	@Tags			PettyCash
//	@Produce		json
//	@Success		200	{object}	PettyCashSummaryResponse
//	@Router			/v1/petty-cash/summary [get]
func GetPettyCashSummary(c *gin.Context) {
	summary, err := models.PettyCashSummary()
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PettyCashSummaryResponse{Data: summary})
}

// GetPettyCashAudit audits a custodian's balance chain
//
//	@Summary		Audit petty cash chain
//	@Description	Replays a custodian's journal and reports entries whose stored balances do not match the recomputation
//	@Tags			PettyCash
//	@Produce		json
//	@Success		200	{object}	PettyCashAuditResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Param			custodian	query	string	true	"Custodian to audit"
//	@Router			/v1/petty-cash/audit [get]
func GetPettyCashAudit(c *gin.Context) {
	custodian := c.Query("custodian")
	if custodian == "" {
		httputil.Error(c, models.ErrCustodianRequired)
		return
	}

	mismatches, err := models.RecomputePettyCashChain(custodian)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, PettyCashAuditResponse{Data: mismatches})
}
