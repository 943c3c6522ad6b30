package http

import (
	"github.com/geocoder89/secondserve/internal/config"
	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/geocoder89/secondserve/internal/http/handlers"
	"github.com/geocoder89/secondserve/internal/http/middlewares"
	"github.com/geocoder89/secondserve/internal/observability"
	"github.com/geocoder89/secondserve/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires into handlers. Prom, Gatherer and
// AuthLimiter are optional.
type Deps struct {
	Accounts  *service.Accounts
	Gate      *service.Gate
	Donations *service.Donations
	Orders    *service.Orders
	Stats     *service.Stats

	Prom        *observability.Prom
	Gatherer    prometheus.Gatherer
	AuthLimiter middlewares.Limiter
	Checks      []handlers.Check
}

func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger("/healthz", "/readyz", "/metrics"))
	r.Use(middlewares.SecurityHeaders(cfg.Env != "dev"))
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}

	// health
	h := handlers.NewHealthHandler(deps.Checks...)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(deps.Gate)
	authH := handlers.NewAuthHandler(deps.Accounts)
	donationsH := handlers.NewDonationsHandler(deps.Donations, deps.Prom)
	ordersH := handlers.NewOrdersHandler(deps.Orders, deps.Prom)
	statsH := handlers.NewStatsHandler(deps.Stats)
	adminH := handlers.NewAdminHandler(deps.Donations, deps.Orders, deps.Stats)

	// register and login are the brute-force targets
	authChain := []gin.HandlerFunc{}
	if deps.AuthLimiter != nil {
		authChain = append(authChain, middlewares.RateLimit(deps.AuthLimiter, middlewares.KeyByIP, deps.Prom))
	}
	authChain = append(authChain, middlewares.RequireJSON())
	authChain = authChain[:len(authChain):len(authChain)]

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", append(authChain, authH.Register)...)
	auth.POST("/login", append(authChain, authH.Login)...)
	auth.GET("/me", authMW.RequireAuth(), authH.Me)

	api.GET("/stats", statsH.Impact)

	// everything below needs a bearer token
	authed := api.Group("")
	authed.Use(authMW.RequireAuth())

	authed.GET("/donations", donationsH.List)
	authed.GET("/donations/:id", donationsH.Get)
	authed.POST("/donations", middlewares.RequireRole(user.RoleDonor), middlewares.RequireJSON(), donationsH.Create)

	authed.POST("/orders", middlewares.RequireRole(user.RoleRecipient), middlewares.RequireJSON(), ordersH.Create)
	authed.GET("/orders", ordersH.List)
	authed.GET("/orders/available", middlewares.RequireRole(user.RoleDriver), ordersH.ListAvailable)
	authed.PATCH("/orders/:id/assign", middlewares.RequireRole(user.RoleDriver), ordersH.Assign)
	authed.PATCH("/orders/:id/status", ordersH.UpdateStatus)

	admin := authed.Group("/admin")
	admin.Use(middlewares.RequireRole(user.RoleAdmin))
	admin.GET("/donations", adminH.ListDonations)
	admin.GET("/orders", adminH.ListOrders)
	admin.GET("/stats", adminH.Stats)

	return r
}
