package handlers

import (
	"context"

	"food-ordering-api/auth"
	"food-ordering-api/models"
	"food-ordering-api/services"
)

type RegistrationService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ApproveOwner(ctx context.Context, caller *auth.Principal, uid string) (*models.User, error)
	PendingOwners(ctx context.Context, caller *auth.Principal) ([]models.User, error)
	Profile(ctx context.Context, caller *auth.Principal) (*models.User, error)
}

type RestaurantService interface {
	Create(ctx context.Context, caller *auth.Principal, in services.RestaurantInput) (*models.Restaurant, error)
	List(ctx context.Context) ([]models.Restaurant, error)
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	Update(ctx context.Context, caller *auth.Principal, id string, patch services.RestaurantPatch) (*models.Restaurant, error)
	AddMenuItem(ctx context.Context, caller *auth.Principal, restaurantID string, in services.MenuItemInput, img *services.Image) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, caller *auth.Principal, restaurantID, itemID string, patch services.MenuItemPatch, img *services.Image) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, caller *auth.Principal, restaurantID, itemID string) error
	ListReviews(ctx context.Context, restaurantID string) ([]models.RestaurantReview, error)
}

type OrderService interface {
	Create(ctx context.Context, caller *auth.Principal, in services.CreateOrderInput) (*models.Order, error)
	List(ctx context.Context, caller *auth.Principal) ([]models.Order, error)
	Get(ctx context.Context, caller *auth.Principal, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, caller *auth.Principal, id string, to models.OrderStatus, note string) (*models.Order, error)
	UpdateTracking(ctx context.Context, caller *auth.Principal, id string, location models.GeoPoint) (*models.OrderTracking, error)
	GetTracking(ctx context.Context, caller *auth.Principal, id string) (*models.OrderTracking, error)
	History(ctx context.Context, caller *auth.Principal, id string) ([]models.OrderStatusHistory, error)
}

type ReviewService interface {
	AddReview(ctx context.Context, caller *auth.Principal, restaurantID string, rating int, comment string) (*models.RestaurantReview, error)
}

// Handler serves the HTTP API. Errors are attached with c.Error and rendered
// by apperrors.ErrorMiddleware.
type Handler struct {
	registration   RegistrationService
	restaurants    RestaurantService
	orders         OrderService
	reviews        ReviewService
	maxUploadBytes int64
}

func New(registration RegistrationService, restaurants RestaurantService, orders OrderService, reviews ReviewService, maxUploadBytes int64) *Handler {
	return &Handler{
		registration:   registration,
		restaurants:    restaurants,
		orders:         orders,
		reviews:        reviews,
		maxUploadBytes: maxUploadBytes,
	}
}
