package handlers

import (
	"net/http"

	"food-ordering-api/apperrors"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Email       string          `json:"email" binding:"required,email"`
	Password    string          `json:"password" binding:"required,min=6"`
	Role        models.UserRole `json:"role" binding:"required"`
	DisplayName string          `json:"displayName" binding:"required"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates the account and profile for any of the three roles
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	user, err := h.registration.Register(c.Request.Context(), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"uid": user.ID})
}

// Login authenticates and returns a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	token, user, err := h.registration.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the caller's profile
func (h *Handler) Me(c *gin.Context) {
	user, err := h.registration.Profile(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PendingOwners lists restaurant owners awaiting approval (admin)
func (h *Handler) PendingOwners(c *gin.Context) {
	users, err := h.registration.PendingOwners(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ApproveOwner approves a restaurant owner (admin); repeating it is a no-op
func (h *Handler) ApproveOwner(c *gin.Context) {
	if _, err := h.registration.ApproveOwner(c.Request.Context(), middleware.GetPrincipal(c), c.Param("uid")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant owner approved"})
}
