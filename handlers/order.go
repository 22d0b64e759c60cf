package handlers

import (
	"net/http"

	"food-ordering-api/apperrors"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	RestaurantID     string               `json:"restaurantId" binding:"required"`
	Items            []models.OrderItem   `json:"items" binding:"required,min=1"`
	PaymentMethod    models.PaymentMethod `json:"paymentMethod" binding:"required"`
	DeliveryAddress  string               `json:"deliveryAddress" binding:"required"`
	DeliveryLocation *models.GeoPoint     `json:"deliveryLocation"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

type UpdateTrackingRequest struct {
	Location *models.GeoPoint `json:"location" binding:"required"`
}

// PlaceOrder creates a new order (customer only)
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.GetPrincipal(c), services.CreateOrderInput{
		RestaurantID:     req.RestaurantID,
		Items:            req.Items,
		PaymentMethod:    req.PaymentMethod,
		DeliveryAddress:  req.DeliveryAddress,
		DeliveryLocation: req.DeliveryLocation,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders returns the orders visible to the caller's role
func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order through its lifecycle
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Status, req.Note)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated to " + string(order.Status)})
}

// UpdateOrderTracking records the live location of an order (owning restaurant only)
func (h *Handler) UpdateOrderTracking(c *gin.Context) {
	var req UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	if _, err := h.orders.UpdateTracking(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), *req.Location); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order tracking updated"})
}

// GetOrderTracking returns the tracking projection of an order
func (h *Handler) GetOrderTracking(c *gin.Context) {
	tracking, err := h.orders.GetTracking(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tracking)
}

// GetOrderHistory returns the status change audit trail of an order
func (h *Handler) GetOrderHistory(c *gin.Context) {
	history, err := h.orders.History(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}
