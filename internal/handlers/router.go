package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eternalgy/referral-portal/internal/auth"
	"github.com/eternalgy/referral-portal/internal/config"
	"github.com/eternalgy/referral-portal/internal/middleware"
	"github.com/eternalgy/referral-portal/internal/storage"
)

// NewRouter assembles the portal's routes. The /api group sits behind the
// identity middleware; auth redirects, terms, health, and metrics are
// public.
func NewRouter(cfg config.Config, verifier *auth.Verifier, store storage.Store) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	authHandler := NewAuthHandler(cfg)
	router.GET("/auth/start", authHandler.Start)
	router.GET("/auth/logout", authHandler.Logout)

	router.GET("/api/terms", Terms)

	router.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	referralHandler := NewReferralHandler(store)
	api := router.Group("/api")
	api.Use(middleware.RequireIdentity(verifier, "/auth/start?return_to=/dashboard"))
	{
		api.GET("/me", referralHandler.Me)
		api.GET("/referrals", referralHandler.List)
		api.POST("/referrals", referralHandler.Create)
		api.PUT("/referrals/:id", referralHandler.Update)
		api.PUT("/profile", referralHandler.UpdateProfile)
	}

	return router
}
