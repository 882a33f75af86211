package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type FinancialYearListResponse struct {
	Data []models.FinancialYear `json:"data"`
}

type FinancialYearResponse struct {
	Data models.FinancialYear `json:"data"`
}

// RegisterFinancialYearRoutes registers the routes for financial years
// with the RouterGroup that is passed.
func RegisterFinancialYearRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", OptionsFinancialYearList)
		r.GET("", GetFinancialYears)
		r.POST("", CreateFinancialYear)
		r.GET("/current", GetCurrentFinancialYear)
		r.OPTIONS("/current", httputil.OptionsGet)
	}

	// Financial year with ID
	{
		r.OPTIONS("/:id", OptionsFinancialYearDetail)
		r.GET("/:id", GetFinancialYear)
		r.DELETE("/:id", DeleteFinancialYear)
		r.POST("/:id/current", SetCurrentFinancialYear)
		r.OPTIONS("/:id/current", httputil.OptionsPost)
	}
}

// OptionsFinancialYearList returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			FinancialYears
//	@Success		204
//	@Router			/v1/financial-years [options]
func OptionsFinancialYearList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsFinancialYearDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			FinancialYears
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/financial-years/{id} [options]
func OptionsFinancialYearDetail(c *gin.Context) {
	if _, ok := parseID(c); !ok {
		return
	}

	httputil.OptionsGetDelete(c)
}

// CreateFinancialYear creates a new financial year
//
//	@Summary		Create financial year
//	@Description	Creates a new financial year in draft status
//	@Tags			FinancialYears
//	@Produce		json
//	@Success		201				{object}	FinancialYearResponse
//	@Failure		400				{object}	httputil.HTTPError
//	@Param			financialYear	body		models.FinancialYear	true	"FinancialYear"
//	@Router			/v1/financial-years [post]
func CreateFinancialYear(c *gin.Context) {
	var year models.FinancialYear
	if err := httputil.BindData(c, &year); err != nil {
		httputil.Error(c, err)
		return
	}

	year, err := models.CreateFinancialYear(year)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, FinancialYearResponse{Data: year})
}

// GetFinancialYears returns all financial years
//
//	@Summary		List financial years
//	@Description	Returns all financial years, newest first
//	@Tags			FinancialYears
//	@Produce		json
//	@Success		200	{object}	FinancialYearListResponse
//	@Router			/v1/financial-years [get]
func GetFinancialYears(c *gin.Context) {
	var years []models.FinancialYear
	if err := models.DB.Order("start_date DESC").Find(&years).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, FinancialYearListResponse{Data: years})
}

// GetFinancialYear returns a single financial year
//
//	@Summary		Get financial year
//	@Description	Returns a specific financial year
//	@Tags			FinancialYears
//	@Produce		json
//	@Success		200	{object}	FinancialYearResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/financial-years/{id} [get]
func GetFinancialYear(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var year models.FinancialYear
	if err := models.DB.First(&year, "id = ?", id).Error; err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, FinancialYearResponse{Data: year})
}

// GetCurrentFinancialYear returns the current financial year
//
//	@Summary		Get current financial year
//	@Description	Returns the financial year marked as current
//	@Tags			FinancialYears
//	@Produce		json
//	@Success		200	{object}	FinancialYearResponse
//	@Failure		404	{object}	httputil.HTTPError
//	@Router			/v1/financial-years/current [get]
func GetCurrentFinancialYear(c *gin.Context) {
	year, err := models.CurrentFinancialYear()
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, FinancialYearResponse{Data: year})
}

// SetCurrentFinancialYear marks a financial year as current
//
//	@Summary		Set current financial year
//	@Description	Marks a financial year as the current one and activates it. The flag moves atomically, there is never more than one current year.
//	@Tags			FinancialYears
//	@Produce		json
//	@Success		200	{object}	FinancialYearResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/financial-years/{id}/current [post]
func SetCurrentFinancialYear(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	year, err := models.SetCurrentFinancialYear(id)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, FinancialYearResponse{Data: year})
}

// DeleteFinancialYear deletes a financial year
//
//	@Summary		Delete financial year
//	@Description	Deletes a financial year. Fails once budgets reference the year.
//	@Tags			FinancialYears
//	@Success		204
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		409	{object}	httputil.HTTPError
//	@Param			id	path		string	true	"ID formatted as string"
//	@Router			/v1/financial-years/{id} [delete]
func DeleteFinancialYear(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := models.DeleteFinancialYear(id); err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusNoContent, gin.H{})
}
