package repository

import (
	"context"
	"time"

	"food-ordering-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindPendingOwners(ctx context.Context) ([]models.User, error)
	// Approve flips is_approved false->true; changed is false when it already was true.
	Approve(ctx context.Context, id string) (changed bool, err error)
	SetRestaurantID(ctx context.Context, id, restaurantID string) error
	AppendOrderHistory(ctx context.Context, id, orderID string) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindPendingOwners(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_approved = ?", models.RoleRestaurantOwner, false).
		Find(&users).Error
	return users, err
}

func (r *GormUserRepository) Approve(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND role = ? AND is_approved = ?", id, models.RoleRestaurantOwner, false).
		Updates(map[string]interface{}{"is_approved": true, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormUserRepository) SetRestaurantID(ctx context.Context, id, restaurantID string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"restaurant_id": restaurantID, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AppendOrderHistory appends under a row lock so concurrent appends for one
// customer serialize; inside an outer transaction this becomes a savepoint.
func (r *GormUserRepository) AppendOrderHistory(ctx context.Context, id, orderID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		user.OrderHistory = append(user.OrderHistory, orderID)
		user.UpdatedAt = time.Now()
		return tx.Model(&models.User{}).
			Where("id = ?", id).
			Select("order_history", "updated_at").
			Updates(&user).Error
	})
}
