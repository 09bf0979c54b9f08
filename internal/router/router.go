// Package router sets up the gin engine with all middlewares and routes.
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	docs "github.com/pocketguard/backend/api"
	"github.com/pocketguard/backend/internal/auth"
	"github.com/pocketguard/backend/internal/config"
	"github.com/pocketguard/backend/internal/controllers"
	"github.com/pocketguard/backend/internal/controllers/healthz"
	"github.com/pocketguard/backend/internal/controllers/root"
	"github.com/pocketguard/backend/internal/controllers/version"
	"github.com/pocketguard/backend/internal/httperror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Version is set at build time with -ldflags "-X github.com/pocketguard/backend/internal/router.Version=...".
var Version = "0.0.0"

// Config creates the engine with all middlewares. The returned teardown
// function unregisters the metrics and must be called when the engine is discarded.
func Config(cfg config.Config) (*gin.Engine, func(), error) {
	gin.SetMode(cfg.Mode)

	// Set up the router and middlewares
	r := gin.New()

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(URLMiddleware(cfg.APIURL))
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, httperror.Error{
			Message: "This HTTP method is not allowed for the endpoint you called",
		})
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

	if len(cfg.CORSOrigins) > 0 {
		log.Debug().Strs("CORS Allowed Origins", cfg.CORSOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "PATCH"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	if err := registerPrometheusMetrics(); err != nil {
		return nil, func() {}, err
	}
	r.Use(MetricsMiddleware())

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(_, _, _ string, _ int) {}

	// Only the direct peer is trusted for the client IP used by the rate limit
	_ = r.SetTrustedProxies(nil)

	log.Debug().Str("API Base URL", cfg.APIURL.String()).Str("Host", cfg.APIURL.Host).Str("Path", cfg.APIURL.Path).Msg("Router")
	log.Info().Str("version", Version).Msg("Router")

	docs.SwaggerInfo.Host = cfg.APIURL.Host
	docs.SwaggerInfo.BasePath = cfg.APIURL.Path
	docs.SwaggerInfo.Version = Version

	teardown := func() {
		if !unregisterPrometheusMetrics() {
			log.Error().Msg("Could not unregister prometheus metrics")
		}
	}

	return r, teardown, nil
}

// AttachRoutes attaches the service and API routes to the router group that is passed in.
func AttachRoutes(co controllers.Controller, group *gin.RouterGroup, cfg config.Config) {
	root.RegisterRoutes(group)
	version.RegisterRoutes(group.Group("/version"), Version)
	healthz.RegisterRoutes(group.Group("/healthz"))
	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// pprof performance profiles
	if cfg.EnablePprof {
		pprof.RouteRegister(group, "debug/pprof")
	}

	group.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := group.Group("/api")
	api.Use(co.Sessions.Middleware(cfg.Auth.PublicPaths, httperror.Abort))

	co.RegisterAccountRoutes(api, auth.RateLimit(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst))
	co.RegisterCategoryRoutes(api.Group("/categories"))
	co.RegisterBudgetRoutes(api.Group("/budgets"))
	co.RegisterSpendingRoutes(api.Group("/spending"))
	co.RegisterExpenseRoutes(api.Group("/expenses"))
	co.RegisterBankRoutes(api.Group("/bank"))
	co.RegisterQuizRoutes(api.Group("/quiz"))
	co.RegisterUPIRoutes(api.Group("/upi"))
}
