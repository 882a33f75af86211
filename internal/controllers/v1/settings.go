package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shulebooks/backend/internal/httputil"
	"github.com/shulebooks/backend/internal/models"
)

type SettingResponse struct {
	Data SettingObject `json:"data"`
}

type SettingObject struct {
	Key   string `json:"key" example:"default_vat_rate"`
	Value string `json:"value" example:"16"`
}

type SettingUpdate struct {
	Value string `json:"value" example:"16"`
}

// RegisterSettingRoutes registers the routes for settings with the
// RouterGroup that is passed.
func RegisterSettingRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:key", OptionsSettingDetail)
	r.GET("/:key", GetSetting)
	r.PATCH("/:key", UpdateSetting)
}

// OptionsSettingDetail returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Settings
//	@Success		204
//	@Router			/v1/settings/{key} [options]
func OptionsSettingDetail(c *gin.Context) {
	httputil.OptionsGetPatch(c)
}

// GetSetting returns a setting value
//
//	@Summary		Get setting
//	@Description	Returns the value of a setting. Settings that have never been written return their default.
//	@Tags			Settings
//	@Produce		json
//	@Success		200	{object}	SettingResponse
//	@Failure		404	{object}	httputil.HTTPError
//	@Param			key	path		string	true	"Setting key"
//	@Router			/v1/settings/{key} [get]
func GetSetting(c *gin.Context) {
	key := c.Param("key")

	value, err := models.GetSetting(key)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingResponse{Data: SettingObject{Key: key, Value: value}})
}

// UpdateSetting sets a setting value
//
//	@Summary		Update setting
//	@Description	Validates and stores a setting value
//	@Tags			Settings
//	@Produce		json
//	@Success		200		{object}	SettingResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Param			key		path		string			true	"Setting key"
//	@Param			setting	body		SettingUpdate	true	"Setting"
//	@Router			/v1/settings/{key} [patch]
func UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var update SettingUpdate
	if err := httputil.BindData(c, &update); err != nil {
		httputil.Error(c, err)
		return
	}

	setting, err := models.SetSetting(key, update.Value)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, SettingResponse{Data: SettingObject{Key: setting.Key, Value: setting.Value}})
}
