package services

import (
	"context"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/logger"
	"food-ordering-api/models"
	"food-ordering-api/repository"

	"go.uber.org/zap"
)

// ReviewService appends reviews and folds them into the restaurant's rating
type ReviewService struct {
	store repository.Store
	log   *zap.Logger
}

func NewReviewService(store repository.Store, log *zap.Logger) *ReviewService {
	return &ReviewService{store: store, log: log}
}

// AddReview stores the review and applies it to the running mean in one
// transaction; the mean is recomputed by the database, so concurrent reviews
// never lose an update.
func (s *ReviewService) AddReview(ctx context.Context, caller *auth.Principal, restaurantID string, rating int, comment string) (*models.RestaurantReview, error) {
	if err := auth.RequireRole(caller, models.RoleCustomer); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.Validation("Rating must be between 1 and 5")
	}

	review := &models.RestaurantReview{
		RestaurantID: restaurantID,
		UserID:       caller.UID,
		Rating:       rating,
		Comment:      comment,
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Restaurants().FindByID(ctx, restaurantID); err != nil {
			return err
		}
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return err
		}
		return tx.Restaurants().ApplyRating(ctx, restaurantID, rating)
	})
	if err != nil {
		return nil, storeErr(err, "Restaurant not found")
	}
	reviewsTotal.Inc()
	s.log.Info("review added", logger.RequestIDField(ctx),
		zap.String("restaurant_id", restaurantID), zap.String("review_id", review.ID), zap.Int("rating", rating))
	return review, nil
}
