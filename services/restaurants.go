package services

import (
	"context"
	"math"
	"strings"
	"time"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/logger"
	"food-ordering-api/models"
	"food-ordering-api/repository"
	"food-ordering-api/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RestaurantInput struct {
	Name         string
	Description  string
	Address      string
	Location     models.GeoPoint
	OpeningHours models.OpeningHours
}

// RestaurantPatch carries only the fields the caller sent
type RestaurantPatch struct {
	Name         *string
	Description  *string
	Address      *string
	Location     *models.GeoPoint
	OpeningHours models.OpeningHours
	IsActive     *bool
}

type MenuItemInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
}

type MenuItemPatch struct {
	Name        *string
	Description *string
	Category    *string
	Price       *float64
	IsAvailable *bool
}

// Image is an uploaded menu image
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// RestaurantService owns restaurants and their embedded menus
type RestaurantService struct {
	store repository.Store
	blobs storage.BlobStore
	log   *zap.Logger
	now   func() time.Time
}

func NewRestaurantService(store repository.Store, blobs storage.BlobStore, log *zap.Logger) *RestaurantService {
	return &RestaurantService{store: store, blobs: blobs, log: log, now: time.Now}
}

// Create makes the restaurant and back-references it from the owner's profile.
// An owner creating a second restaurant overwrites the back-reference.
func (s *RestaurantService) Create(ctx context.Context, caller *auth.Principal, in RestaurantInput) (*models.Restaurant, error) {
	if err := auth.RequireRole(caller, models.RoleRestaurantOwner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Address) == "" {
		return nil, apperrors.Validation("Name and address are required")
	}
	if err := validateLocation(in.Location); err != nil {
		return nil, err
	}

	restaurant := &models.Restaurant{
		OwnerID:      caller.UID,
		Name:         in.Name,
		Description:  in.Description,
		Address:      in.Address,
		Location:     in.Location,
		Menu:         []models.MenuItem{},
		OpeningHours: in.OpeningHours,
		IsActive:     true,
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Restaurants().Create(ctx, restaurant); err != nil {
			return err
		}
		return tx.Users().SetRestaurantID(ctx, caller.UID, restaurant.ID)
	})
	if err != nil {
		return nil, storeErr(err, "Profile not found")
	}
	s.log.Info("restaurant created", logger.RequestIDField(ctx),
		zap.String("restaurant_id", restaurant.ID), zap.String("owner_id", caller.UID))
	return restaurant, nil
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	restaurants, err := s.store.Restaurants().FindAll(ctx)
	if err != nil {
		return nil, storeErr(err, "Restaurant not found")
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}
	return restaurants, nil
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, err := s.store.Restaurants().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Restaurant not found")
	}
	return restaurant, nil
}

// Update merges the patch into the restaurant, touching only the fields sent
func (s *RestaurantService) Update(ctx context.Context, caller *auth.Principal, id string, patch RestaurantPatch) (*models.Restaurant, error) {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return nil, err
	}

	var (
		row     models.Restaurant
		columns []string
	)
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		row.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.Description != nil {
		row.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.Address != nil {
		row.Address = *patch.Address
		columns = append(columns, "address")
	}
	if patch.Location != nil {
		if err := validateLocation(*patch.Location); err != nil {
			return nil, err
		}
		row.Location = *patch.Location
		columns = append(columns, "location")
	}
	if patch.OpeningHours != nil {
		row.OpeningHours = patch.OpeningHours
		columns = append(columns, "opening_hours")
	}
	if patch.IsActive != nil {
		row.IsActive = *patch.IsActive
		columns = append(columns, "is_active")
	}
	if len(columns) == 0 {
		return nil, apperrors.Validation("No updatable fields provided")
	}

	if err := s.store.Restaurants().UpdateFields(ctx, id, &row, columns); err != nil {
		return nil, storeErr(err, "Restaurant not found")
	}
	return s.Get(ctx, id)
}

// AddMenuItem stores the image, then appends the item to the menu. The image
// is released again when the menu write fails.
func (s *RestaurantService) AddMenuItem(ctx context.Context, caller *auth.Principal, restaurantID string, in MenuItemInput, img *Image) (*models.MenuItem, error) {
	if _, err := s.owned(ctx, caller, restaurantID); err != nil {
		return nil, err
	}
	if img == nil || len(img.Data) == 0 {
		return nil, apperrors.Validation("Image file is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation("Name is required")
	}
	if err := validatePrice(in.Price); err != nil {
		return nil, err
	}

	imageURL, err := s.upload(ctx, restaurantID, img)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := models.MenuItem{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    imageURL,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = s.store.Restaurants().MutateMenu(ctx, restaurantID, func(r *models.Restaurant) error {
		r.Menu = append(r.Menu, item)
		return nil
	})
	if err != nil {
		s.release(ctx, restaurantID, imageURL)
		return nil, storeErr(err, "Restaurant not found")
	}
	return &item, nil
}

// UpdateMenuItem patches one item; a new image replaces the old one, which is
// released after the menu write succeeds.
func (s *RestaurantService) UpdateMenuItem(ctx context.Context, caller *auth.Principal, restaurantID, itemID string, patch MenuItemPatch, img *Image) (*models.MenuItem, error) {
	if _, err := s.owned(ctx, caller, restaurantID); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.Validation("Name cannot be empty")
	}
	if patch.Price != nil {
		if err := validatePrice(*patch.Price); err != nil {
			return nil, err
		}
	}

	var newURL string
	if img != nil && len(img.Data) > 0 {
		url, err := s.upload(ctx, restaurantID, img)
		if err != nil {
			return nil, err
		}
		newURL = url
	}

	var (
		updated models.MenuItem
		oldURL  string
	)
	_, err := s.store.Restaurants().MutateMenu(ctx, restaurantID, func(r *models.Restaurant) error {
		idx := r.MenuItemIndex(itemID)
		if idx < 0 {
			return apperrors.NotFound("Menu item not found")
		}
		item := r.Menu[idx]
		if patch.Name != nil {
			item.Name = *patch.Name
		}
		if patch.Description != nil {
			item.Description = *patch.Description
		}
		if patch.Category != nil {
			item.Category = *patch.Category
		}
		if patch.Price != nil {
			item.Price = *patch.Price
		}
		if patch.IsAvailable != nil {
			item.IsAvailable = *patch.IsAvailable
		}
		oldURL = ""
		if newURL != "" {
			oldURL = item.ImageURL
			item.ImageURL = newURL
		}
		item.UpdatedAt = s.now()
		r.Menu[idx] = item
		updated = item
		return nil
	})
	if err != nil {
		if newURL != "" {
			s.release(ctx, restaurantID, newURL)
		}
		return nil, storeErr(err, "Restaurant not found")
	}
	if oldURL != "" {
		s.release(ctx, restaurantID, oldURL)
	}
	return &updated, nil
}

// DeleteMenuItem removes the item, then releases its image
func (s *RestaurantService) DeleteMenuItem(ctx context.Context, caller *auth.Principal, restaurantID, itemID string) error {
	if _, err := s.owned(ctx, caller, restaurantID); err != nil {
		return err
	}

	var imageURL string
	_, err := s.store.Restaurants().MutateMenu(ctx, restaurantID, func(r *models.Restaurant) error {
		idx := r.MenuItemIndex(itemID)
		if idx < 0 {
			return apperrors.NotFound("Menu item not found")
		}
		imageURL = r.Menu[idx].ImageURL
		r.Menu = append(r.Menu[:idx], r.Menu[idx+1:]...)
		return nil
	})
	if err != nil {
		return storeErr(err, "Restaurant not found")
	}
	if imageURL != "" {
		s.release(ctx, restaurantID, imageURL)
	}
	return nil
}

// ListReviews returns a restaurant's reviews, newest first
func (s *RestaurantService) ListReviews(ctx context.Context, restaurantID string) ([]models.RestaurantReview, error) {
	if _, err := s.Get(ctx, restaurantID); err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews().FindByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, storeErr(err, "Restaurant not found")
	}
	if reviews == nil {
		reviews = []models.RestaurantReview{}
	}
	return reviews, nil
}

// owned loads the restaurant and checks the caller is its approved owner
func (s *RestaurantService) owned(ctx context.Context, caller *auth.Principal, id string) (*models.Restaurant, error) {
	if err := auth.RequireRole(caller, models.RoleRestaurantOwner); err != nil {
		return nil, err
	}
	restaurant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant.OwnerID != caller.UID {
		return nil, apperrors.Forbidden("You do not own this restaurant")
	}
	return restaurant, nil
}

func (s *RestaurantService) upload(ctx context.Context, restaurantID string, img *Image) (string, error) {
	key := storage.ObjectKey(storage.MenuImagePrefix(restaurantID), img.Filename, s.now())
	url, err := s.blobs.Put(ctx, key, img.ContentType, img.Data)
	if err != nil {
		if apperrors.IsTransient(err) {
			return "", apperrors.Unavailable("Image storage is unavailable", err)
		}
		return "", apperrors.Dependency("Failed to store image", err)
	}
	return url, nil
}

// release deletes a blob; failures leave an orphan, which is logged and counted
func (s *RestaurantService) release(ctx context.Context, restaurantID, url string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		orphanedBlobs.Inc()
		s.log.Error("orphaned menu image", logger.RequestIDField(ctx),
			zap.String("restaurant_id", restaurantID), zap.String("url", url), zap.Error(err))
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validatePrice(p float64) error {
	if !finite(p) {
		return apperrors.Validation("Price must be a finite number")
	}
	if p < 0 {
		return apperrors.Validation("Price must not be negative")
	}
	return nil
}

func validateLocation(p models.GeoPoint) error {
	if !finite(p.Latitude) || !finite(p.Longitude) {
		return apperrors.Validation("Location must be finite")
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return apperrors.Validation("Location is out of range")
	}
	return nil
}
