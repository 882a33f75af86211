package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/importer"
)

type ImportResponse struct {
	Data importer.Result `json:"data"`
}

// ImportRequest is the payment feed exported by the fee subsystem.
type ImportRequest struct {
	Payments []importer.Payment `json:"payments"`
}

// RegisterImportRoutes registers the routes for the fee reconciliation
// import with the RouterGroup that is passed.
func RegisterImportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", httputil.OptionsPost)
	r.POST("", ImportFeePayments)
}

// ImportFeePayments imports settled fee payments into the ledger
//
//	@Summary		Import fee payments
//	@Description	Books all settled payments from the feed as income records. Payments already imported are skipped, so the same feed can be posted repeatedly.
//	@Tags			Import
//	@Produce		json
//	@Success		200		{object}	ImportResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		503		{object}	httputil.HTTPError
//	@Param			feed	body		ImportRequest	true	"Payment feed"
//	@Router			/v1/import [post]
func ImportFeePayments(c *gin.Context) {
	var feed ImportRequest
	if err := httputil.BindData(c, &feed); err != nil {
		httputil.Error(c, err)
		return
	}

	result, err := importer.Run(importer.Payments(feed.Payments))
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ImportResponse{Data: result})
}
