package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	docs "github.com/shulebooks/backend/api"
	"github.com/shulebooks/backend/internal/config"
	v1 "github.com/shulebooks/backend/internal/controllers/v1"
	"github.com/shulebooks/backend/internal/httputil"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// This is set at build time, see Makefile.
var version = "0.0.0"

// Router sets up the HTTP surface: middlewares, meta endpoints and the
// v1 API routes.
func Router(cfg config.Config) (*gin.Engine, error) {
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(MetricsMiddleware())
	r.NoMethod(func(c *gin.Context) {
		httputil.NewError(c, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
	})
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	// CORS settings
	if cfg.CORSAllowOrigins != "" {
		log.Debug().Str("CORS Allowed Origins", cfg.CORSAllowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Fields(cfg.CORSAllowOrigins),
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Info().Str("version", version).Msg("Router")

	docs.SwaggerInfo.Title = "ShuleBooks"
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Description = "The financial ledger and budget control backend for the ShuleBooks school administration platform."

	AttachRoutes(cfg, &r.RouterGroup)

	return r, nil
}

// AttachRoutes attaches the API routes to the router group that is passed in.
// Separating this from Router() allows tests to attach the routes to their
// own engine.
func AttachRoutes(cfg config.Config, group *gin.RouterGroup) {
	group.GET("", GetRoot)
	group.OPTIONS("", OptionsRoot)
	group.GET("/version", GetVersion)
	group.OPTIONS("/version", OptionsVersion)
	group.GET("/healthz", GetHealth)
	group.OPTIONS("/healthz", OptionsHealth)
	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.EnablePprof {
		pprof.RouteRegister(group, "debug/pprof")
	}

	group.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := group.Group("/v1")
	{
		apiV1.GET("", GetV1)
		apiV1.OPTIONS("", OptionsV1)
	}

	v1.RegisterAccountRoutes(apiV1.Group("/accounts"))
	v1.RegisterFinancialYearRoutes(apiV1.Group("/financial-years"))
	v1.RegisterSettingRoutes(apiV1.Group("/settings"))
	v1.RegisterBudgetRoutes(apiV1.Group("/budgets"))
	v1.RegisterBudgetItemRoutes(apiV1.Group("/budget-items"))
	v1.RegisterAllocationRoutes(apiV1.Group("/allocations"))
	v1.RegisterIncomeRoutes(apiV1.Group("/incomes"))
	v1.RegisterExpenseRoutes(apiV1.Group("/expenses"))
	v1.RegisterBankAccountRoutes(apiV1.Group("/bank-accounts"))
	v1.RegisterTransferRoutes(apiV1.Group("/transfers"))
	v1.RegisterPettyCashRoutes(apiV1.Group("/petty-cash"))
	v1.RegisterImportRoutes(apiV1.Group("/import"))
}

type RootResponse struct {
	Links RootLinks `json:"links"`
}

type RootLinks struct {
	Docs    string `json:"docs" example:"/docs/index.html"` // Swagger API documentation
	Version string `json:"version" example:"/version"`      // Endpoint returning the version of the backend
	Healthz string `json:"healthz" example:"/healthz"`      // Health check endpoint
	Metrics string `json:"metrics" example:"/metrics"`      // Prometheus metrics
	V1      string `json:"v1" example:"/v1"`                // List endpoint for all v1 endpoints
}

// GetRoot returns the link list for the API root
//
//	@Summary		API root
//	@Description	Entrypoint for the API, listing all endpoints
//	@Tags			General
//	@Success		200	{object}	RootResponse
//	@Router			/ [get]
func GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{
		Links: RootLinks{
			Docs:    "/docs/index.html",
			Version: "/version",
			Healthz: "/healthz",
			Metrics: "/metrics",
			V1:      "/v1",
		},
	})
}

type VersionResponse struct {
	Data VersionObject `json:"data"` // Data object for the version endpoint
}
type VersionObject struct {
	Version string `json:"version" example:"1.1.0"` // the running version of the backend
}

// GetVersion returns the API version object
//
//	@Summary		API version
//	@Description	Returns the software version of the API
//	@Tags			General
//	@Success		200	{object}	VersionResponse
//	@Router			/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Data: VersionObject{
			Version: version,
		},
	})
}

// GetHealth returns a static OK as long as the process serves requests
//
//	@Summary		Health check
//	@Description	Returns 200 as long as the API is able to serve requests
//	@Tags			General
//	@Success		200	{object}	HealthResponse
//	@Router			/healthz [get]
func GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// OptionsRoot returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/ [options]
func OptionsRoot(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsVersion returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/version [options]
func OptionsVersion(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsHealth returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			General
//	@Success		204
//	@Router			/healthz [options]
func OptionsHealth(c *gin.Context) {
	httputil.OptionsGet(c)
}

type V1Response struct {
	Links V1Links `json:"links"` // Links for the v1 API
}

type V1Links struct {
	Accounts       string `json:"accounts" example:"/v1/accounts"`              // URL of the chart of accounts endpoint
	FinancialYears string `json:"financialYears" example:"/v1/financial-years"` // URL of the financial year endpoint
	Settings       string `json:"settings" example:"/v1/settings"`              // URL of the settings endpoint
	Budgets        string `json:"budgets" example:"/v1/budgets"`                // URL of the budget endpoint
	Incomes        string `json:"incomes" example:"/v1/incomes"`                // URL of the income endpoint
	Expenses       string `json:"expenses" example:"/v1/expenses"`              // URL of the expense endpoint
	BankAccounts   string `json:"bankAccounts" example:"/v1/bank-accounts"`     // URL of the bank account endpoint
	Transfers      string `json:"transfers" example:"/v1/transfers"`            // URL of the bank transfer endpoint
	PettyCash      string `json:"pettyCash" example:"/v1/petty-cash"`           // URL of the petty cash endpoint
	Import         string `json:"import" example:"/v1/import"`                  // URL of the fee import endpoint
}

// GetV1 returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	V1Response
//	@Router			/v1 [get]
func GetV1(c *gin.Context) {
	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			Accounts:       "/v1/accounts",
			FinancialYears: "/v1/financial-years",
			Settings:       "/v1/settings",
			Budgets:        "/v1/budgets",
			Incomes:        "/v1/incomes",
			Expenses:       "/v1/expenses",
			BankAccounts:   "/v1/bank-accounts",
			Transfers:      "/v1/transfers",
			PettyCash:      "/v1/petty-cash",
			Import:         "/v1/import",
		},
	})
}

// OptionsV1 returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func OptionsV1(c *gin.Context) {
	httputil.OptionsGet(c)
}
