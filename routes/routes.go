package routes

import (
	"food-ordering-api/handlers"
	"food-ordering-api/middleware"
	"food-ordering-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, authn middleware.Authenticator) {
	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/reviews", h.ListReviews)

		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := r.Group("/api")
	authed.Use(middleware.AuthRequired(authn))
	{
		authed.GET("/auth/me", h.Me)

		// scoped per role inside the order service
		authed.GET("/orders", h.ListOrders)
		authed.GET("/orders/:id", h.GetOrder)
		authed.GET("/orders/:id/tracking", h.GetOrderTracking)
		authed.GET("/orders/:id/history", h.GetOrderHistory)
		authed.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api")
	customer.Use(middleware.AuthRequired(authn), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.POST("/restaurants/:id/reviews", h.AddReview)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	owner := r.Group("/api")
	owner.Use(middleware.AuthRequired(authn), middleware.RoleRequired(models.RoleRestaurantOwner))
	{
		owner.POST("/restaurants", h.CreateRestaurant)
		owner.PUT("/restaurants/:id", h.UpdateRestaurant)

		owner.POST("/restaurants/:id/menu", h.AddMenuItem)
		owner.PUT("/restaurants/:id/menu/:itemId", h.UpdateMenuItem)
		owner.DELETE("/restaurants/:id/menu/:itemId", h.DeleteMenuItem)

		owner.PUT("/orders/:id/tracking", h.UpdateOrderTracking)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api")
	admin.Use(middleware.AuthRequired(authn), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/auth/pending-owners", h.PendingOwners)
		admin.POST("/auth/approve-owner/:uid", h.ApproveOwner)
	}
}
