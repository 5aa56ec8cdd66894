package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentadmin/internal/infra/config"
	"rentadmin/internal/infra/obs"
)

type PricingHTTP interface {
	Quote(c *gin.Context)
	Preview(c *gin.Context)
}

type CouponHTTP interface {
	Validate(c *gin.Context)
	Redeem(c *gin.Context)
}

type Handlers struct {
	Pricing PricingHTTP
	Coupons CouponHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine. Every /api/v1/tenants/:tenant route requires an X-Tenant-ID
// header naming the same tenant.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", TenantHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	tenant := router.Group("/api/v1/tenants/:tenant", RequireTenant())
	if h.Pricing != nil {
		tenant.GET("/rooms/:room/prices", h.Pricing.Quote)
		tenant.POST("/rooms/:room/prices/preview", h.Pricing.Preview)
	}
	if h.Coupons != nil {
		tenant.POST("/coupons/validate", h.Coupons.Validate)
		tenant.POST("/coupons/redeem", h.Coupons.Redeem)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
