package repository

import (
	"context"
	"time"

	"food-ordering-api/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	FindByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus moves the order from -> to; ErrStaleWrite when it is no longer in from
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error

	CreateTracking(ctx context.Context, tracking *models.OrderTracking) error
	FindTracking(ctx context.Context, orderID string) (*models.OrderTracking, error)
	UpdateTrackingStatus(ctx context.Context, orderID string, status models.OrderStatus, at time.Time) error
	UpdateTrackingLocation(ctx context.Context, orderID string, location models.GeoPoint, at time.Time) error

	AddHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.find(ctx, r.db.Where("customer_id = ?", customerID))
}

func (r *GormOrderRepository) FindByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return r.find(ctx, r.db.Where("restaurant_id = ?", restaurantID))
}

func (r *GormOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, r.db)
}

func (r *GormOrderRepository) find(ctx context.Context, query *gorm.DB) ([]models.Order, error) {
	orders := []models.Order{}
	err := query.WithContext(ctx).Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at time.Time) error {
	updates := map[string]interface{}{"status": to, "updated_at": at}
	if to == models.StatusDelivered {
		updates["actual_delivery_time"] = at
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (r *GormOrderRepository) CreateTracking(ctx context.Context, tracking *models.OrderTracking) error {
	return r.db.WithContext(ctx).Create(tracking).Error
}

func (r *GormOrderRepository) FindTracking(ctx context.Context, orderID string) (*models.OrderTracking, error) {
	var tracking models.OrderTracking
	if err := r.db.WithContext(ctx).First(&tracking, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (r *GormOrderRepository) UpdateTrackingStatus(ctx context.Context, orderID string, status models.OrderStatus, at time.Time) error {
	return r.updateTracking(ctx, orderID, &models.OrderTracking{Status: status, UpdatedAt: at}, "status")
}

func (r *GormOrderRepository) UpdateTrackingLocation(ctx context.Context, orderID string, location models.GeoPoint, at time.Time) error {
	return r.updateTracking(ctx, orderID, &models.OrderTracking{Location: &location, UpdatedAt: at}, "location")
}

func (r *GormOrderRepository) updateTracking(ctx context.Context, orderID string, patch *models.OrderTracking, column string) error {
	res := r.db.WithContext(ctx).Model(&models.OrderTracking{}).
		Where("order_id = ?", orderID).
		Select(column, "updated_at").
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormOrderRepository) AddHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormOrderRepository) History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&history).Error
	return history, err
}
