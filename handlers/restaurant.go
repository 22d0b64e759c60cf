package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"food-ordering-api/apperrors"
	"food-ordering-api/logger"
	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ── Restaurants ──────────────────────────────────────────────────────────────

type CreateRestaurantRequest struct {
	Name         string              `json:"name" binding:"required"`
	Description  string              `json:"description"`
	Address      string              `json:"address" binding:"required"`
	Location     models.GeoPoint     `json:"location"`
	OpeningHours models.OpeningHours `json:"openingHours"`
}

type UpdateRestaurantRequest struct {
	Name         *string             `json:"name"`
	Description  *string             `json:"description"`
	Address      *string             `json:"address"`
	Location     *models.GeoPoint    `json:"location"`
	OpeningHours models.OpeningHours `json:"openingHours"`
	IsActive     *bool               `json:"isActive"`
}

type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	IsAvailable *bool    `json:"isAvailable"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// CreateRestaurant lets an approved owner create their restaurant
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	restaurant, err := h.restaurants.Create(c.Request.Context(), middleware.GetPrincipal(c), services.RestaurantInput{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Location:     req.Location,
		OpeningHours: req.OpeningHours,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, restaurant)
}

// ListRestaurants returns all restaurants (public)
func (h *Handler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.restaurants.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// GetRestaurant returns a single restaurant with its menu (public)
func (h *Handler) GetRestaurant(c *gin.Context) {
	restaurant, err := h.restaurants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// UpdateRestaurant merges the sent fields into the restaurant
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	var req UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	_, err := h.restaurants.Update(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), services.RestaurantPatch{
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Location:     req.Location,
		OpeningHours: req.OpeningHours,
		IsActive:     req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated"})
}

// ── Menu ─────────────────────────────────────────────────────────────────────

// AddMenuItem takes a multipart form: name, description, price, category and an image file
func (h *Handler) AddMenuItem(c *gin.Context) {
	h.limitBody(c)
	img, err := h.readImage(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		_ = c.Error(apperrors.Validation("price must be a number"))
		return
	}

	item, err := h.restaurants.AddMenuItem(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), services.MenuItemInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Price:       price,
	}, img)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem accepts JSON, or a multipart form when replacing the image
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var (
		patch services.MenuItemPatch
		img   *services.Image
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		h.limitBody(c)
		var err error
		if img, err = h.readImage(c); err != nil {
			_ = c.Error(err)
			return
		}
		if patch, err = formPatch(c); err != nil {
			_ = c.Error(err)
			return
		}
	} else {
		var req UpdateMenuItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperrors.Validation(err.Error()))
			return
		}
		patch = services.MenuItemPatch(req)
	}

	item, err := h.restaurants.UpdateMenuItem(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), c.Param("itemId"), patch, img)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem removes an item and its image
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	if err := h.restaurants.DeleteMenuItem(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), c.Param("itemId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted"})
}

// ── Reviews ──────────────────────────────────────────────────────────────────

// AddReview lets a customer rate a restaurant
func (h *Handler) AddReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(err.Error()))
		return
	}

	review, err := h.reviews.AddReview(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListReviews returns a restaurant's reviews, newest first (public)
func (h *Handler) ListReviews(c *gin.Context) {
	reviews, err := h.restaurants.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) limitBody(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
}

// readImage returns the "image" form file, or nil when none was sent
func (h *Handler) readImage(c *gin.Context) (*services.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn(c, "upload rejected", zap.Int64("limit", tooLarge.Limit))
			return nil, apperrors.Validation("Upload exceeds the size limit")
		}
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		logger.Error(c, "open upload", err)
		return nil, apperrors.Validation("Unreadable image upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		logger.Error(c, "read upload", err)
		return nil, apperrors.Validation("Unreadable image upload")
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperrors.Validation("Upload must be an image")
	}
	logger.Info(c, "image upload received", zap.String("filename", fh.Filename), zap.Int("bytes", len(data)))
	return &services.Image{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

func formPatch(c *gin.Context) (services.MenuItemPatch, error) {
	var patch services.MenuItemPatch
	if v, ok := c.GetPostForm("name"); ok {
		patch.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		patch.Description = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		patch.Category = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return patch, apperrors.Validation("price must be a number")
		}
		patch.Price = &price
	}
	if v, ok := c.GetPostForm("isAvailable"); ok {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return patch, apperrors.Validation("isAvailable must be a boolean")
		}
		patch.IsAvailable = &available
	}
	return patch, nil
}
