package main

import (
	"net/http"
	"strings"
	"time"

	"blood-donate.backend/internal/interfaces/http/handlers"
	"blood-donate.backend/internal/interfaces/http/middleware"
	"blood-donate.backend/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "blood-donate-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	userHandler    *handlers.UserHandler
	requestHandler *handlers.DonationRequestHandler
	fundingHandler *handlers.FundingHandler
	webhookHandler *handlers.WebhookHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware gin.HandlerFunc
	users          middleware.UserLookup
}

// healthReporter is the last known store probe result
type healthReporter interface {
	Healthy() bool
	CheckedAt() time.Time
}

func applyCORSMiddleware(r *gin.Engine, origins []string) {
	allowed := make(map[string]bool, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
		}
		allowed[o] = true
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (wildcard || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", strings.Join([]string{
			"Authorization", "Content-Type", middleware.IdempotencyHeader, middleware.RequestIDHeader,
		}, ", "))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

// registerHealthRoute reports liveness and the store probe. A failed probe
// answers 503 with status "degraded".
func registerHealthRoute(r *gin.Engine, health healthReporter) {
	r.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		}
		if health == nil {
			c.JSON(http.StatusOK, body)
			return
		}
		if checked := health.CheckedAt(); !checked.IsZero() {
			body["checkedAt"] = checked.UTC().Format(time.RFC3339)
		}
		if !health.Healthy() {
			body["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Public reads
		v1.GET("/requests/public", d.requestHandler.ListPublic)
		v1.GET("/requests/search", d.requestHandler.Search)

		// Stripe authenticates itself with the signature header
		v1.POST("/webhooks/stripe", d.webhookHandler.HandleStripe)

		users := v1.Group("/users")
		users.Use(d.authMiddleware)
		{
			users.POST("", d.userHandler.Register)
			users.GET("/me", d.userHandler.GetMe)
			users.PUT("/me", d.userHandler.UpdateMe)
			users.GET("/role/:email", d.userHandler.GetRole)
		}

		requests := v1.Group("/requests")
		requests.Use(d.authMiddleware)
		{
			requests.POST("", d.requestHandler.Create)
			requests.GET("/mine", d.requestHandler.ListMine)
			requests.GET("/:id", d.requestHandler.Get)
			requests.PUT("/:id", d.requestHandler.Update)
			requests.DELETE("/:id", d.requestHandler.Delete)
			requests.PATCH("/:id/status", d.requestHandler.UpdateStatus)
			requests.PATCH("/:id/claim", d.requestHandler.Claim)
		}

		fundings := v1.Group("/fundings")
		fundings.Use(d.authMiddleware)
		{
			fundings.POST("/checkout", middleware.IdempotencyMiddleware(), d.fundingHandler.CreateCheckout)
			fundings.POST("/confirm", d.fundingHandler.Confirm)
			fundings.GET("", d.fundingHandler.List)
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware)
		{
			admin.GET("/users", middleware.RequireAdmin(d.users), d.adminHandler.ListUsers)
			admin.PATCH("/users/role", middleware.RequireAdmin(d.users), d.adminHandler.UpdateRole)
			admin.PATCH("/users/status", middleware.RequireAdmin(d.users), d.adminHandler.UpdateStatus)
			admin.GET("/requests", middleware.RequireAdminOrVolunteer(d.users), d.adminHandler.ListRequests)
			admin.GET("/stats", middleware.RequireAdminOrVolunteer(d.users), d.adminHandler.Stats)
		}
	}
}
