package repository

import (
	"context"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.RestaurantReview) error
	FindByRestaurant(ctx context.Context, restaurantID string) ([]models.RestaurantReview, error)
}

type GormReviewRepository struct {
	db *gorm.DB
}

func (r *GormReviewRepository) Create(ctx context.Context, review *models.RestaurantReview) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *GormReviewRepository) FindByRestaurant(ctx context.Context, restaurantID string) ([]models.RestaurantReview, error) {
	reviews := []models.RestaurantReview{}
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at desc").
		Find(&reviews).Error
	return reviews, err
}
