package repository

import (
	"context"
	"time"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

// maxMenuAttempts bounds the compare-and-swap loop in MutateMenu
const maxMenuAttempts = 5

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	FindByID(ctx context.Context, id string) (*models.Restaurant, error)
	FindAll(ctx context.Context) ([]models.Restaurant, error)
	// UpdateFields writes only the named columns of patch
	UpdateFields(ctx context.Context, id string, patch *models.Restaurant, columns []string) error
	// MutateMenu re-reads the restaurant and applies fn until the menu write wins
	MutateMenu(ctx context.Context, id string, fn func(*models.Restaurant) error) (*models.Restaurant, error)
	// ApplyRating folds one rating into the running mean in a single statement
	ApplyRating(ctx context.Context, id string, rating int) error
}

type GormRestaurantRepository struct {
	db *gorm.DB
}

func (r *GormRestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	return r.db.WithContext(ctx).Create(restaurant).Error
}

func (r *GormRestaurantRepository) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := r.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *GormRestaurantRepository) FindAll(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&restaurants).Error
	return restaurants, err
}

func (r *GormRestaurantRepository) UpdateFields(ctx context.Context, id string, patch *models.Restaurant, columns []string) error {
	patch.UpdatedAt = time.Now()
	cols := append(append([]string{}, columns...), "updated_at")
	res := r.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", id).
		Select(cols).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRestaurantRepository) MutateMenu(ctx context.Context, id string, fn func(*models.Restaurant) error) (*models.Restaurant, error) {
	for attempt := 0; attempt < maxMenuAttempts; attempt++ {
		restaurant, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		seen := restaurant.MenuVersion
		if err := fn(restaurant); err != nil {
			return nil, err
		}

		restaurant.MenuVersion = seen + 1
		restaurant.UpdatedAt = time.Now()
		res := r.db.WithContext(ctx).Model(&models.Restaurant{}).
			Where("id = ? AND menu_version = ?", id, seen).
			Select("menu", "menu_version", "updated_at").
			Updates(restaurant)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return restaurant, nil
		}
	}
	return nil, ErrStaleWrite
}

func (r *GormRestaurantRepository) ApplyRating(ctx context.Context, id string, rating int) error {
	res := r.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"rating":        gorm.Expr("(rating * total_ratings + ?) / (total_ratings + 1)", float64(rating)),
			"total_ratings": gorm.Expr("total_ratings + 1"),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
