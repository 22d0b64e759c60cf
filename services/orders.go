package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/logger"
	"food-ordering-api/models"
	"food-ordering-api/repository"
	"food-ordering-api/statemachine"

	"go.uber.org/zap"
)

type CreateOrderInput struct {
	RestaurantID     string
	Items            []models.OrderItem
	PaymentMethod    models.PaymentMethod
	DeliveryAddress  string
	DeliveryLocation *models.GeoPoint
}

// OrderService runs the order lifecycle and its tracking projection
type OrderService struct {
	store repository.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewOrderService(store repository.Store, log *zap.Logger) *OrderService {
	return &OrderService{store: store, log: log, now: time.Now}
}

// Create places a pending order. Item prices are the client's snapshot, but
// every item must exist on the restaurant's menu. The order, its tracking row
// and the customer's history entry are written in one transaction.
func (s *OrderService) Create(ctx context.Context, caller *auth.Principal, in CreateOrderInput) (*models.Order, error) {
	if err := auth.RequireRole(caller, models.RoleCustomer); err != nil {
		return nil, err
	}
	if in.RestaurantID == "" || len(in.Items) == 0 {
		return nil, apperrors.Validation("restaurantId and at least one item are required")
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperrors.Validation("paymentMethod must be online or offline")
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return nil, apperrors.Validation("deliveryAddress is required")
	}
	if in.DeliveryLocation != nil {
		if err := validateLocation(*in.DeliveryLocation); err != nil {
			return nil, err
		}
	}

	restaurant, err := s.store.Restaurants().FindByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, storeErr(err, "Restaurant not found")
	}
	if !restaurant.IsActive {
		return nil, apperrors.Validation("Restaurant is not accepting orders")
	}
	items, err := checkItems(restaurant, in.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		RestaurantID:     restaurant.ID,
		CustomerID:       caller.UID,
		Items:            items,
		TotalAmount:      models.OrderTotal(items),
		Status:           models.StatusPending,
		PaymentStatus:    models.PaymentPending,
		PaymentMethod:    in.PaymentMethod,
		DeliveryAddress:  in.DeliveryAddress,
		DeliveryLocation: in.DeliveryLocation,
	}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Orders().CreateTracking(ctx, &models.OrderTracking{
			OrderID:   order.ID,
			Status:    order.Status,
			UpdatedAt: order.CreatedAt,
		}); err != nil {
			return err
		}
		return tx.Users().AppendOrderHistory(ctx, caller.UID, order.ID)
	})
	if err != nil {
		return nil, storeErr(err, "Profile not found")
	}

	ordersCreated.Inc()
	s.log.Info("order created", logger.RequestIDField(ctx),
		zap.String("order_id", order.ID),
		zap.String("restaurant_id", order.RestaurantID),
		zap.Float64("total_amount", order.TotalAmount))
	return order, nil
}

func checkItems(restaurant *models.Restaurant, submitted []models.OrderItem) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, len(submitted))
	for i, it := range submitted {
		if it.Quantity < 1 {
			return nil, apperrors.Validation(fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
		if !finite(it.Price) || it.Price < 0 {
			return nil, apperrors.Validation(fmt.Sprintf("items[%d]: price must be a finite, non-negative number", i))
		}
		idx := restaurant.MenuItemIndex(it.MenuItemID)
		if idx < 0 {
			return nil, apperrors.Validation(fmt.Sprintf("items[%d]: menu item %q is not on this restaurant's menu", i, it.MenuItemID))
		}
		menuItem := restaurant.Menu[idx]
		if !menuItem.IsAvailable {
			return nil, apperrors.Validation(fmt.Sprintf("items[%d]: %s is not available", i, menuItem.Name))
		}
		if it.Name == "" {
			it.Name = menuItem.Name
		}
		items[i] = it
	}
	return items, nil
}

// List returns the orders visible to the caller: customers see their own,
// owners see their restaurant's, admins see all. Any other role is refused.
func (s *OrderService) List(ctx context.Context, caller *auth.Principal) ([]models.Order, error) {
	var (
		orders []models.Order
		err    error
	)
	switch caller.Role {
	case models.RoleCustomer:
		orders, err = s.store.Orders().FindByCustomer(ctx, caller.UID)
	case models.RoleRestaurantOwner:
		if err := auth.RequireRole(caller, models.RoleRestaurantOwner); err != nil {
			return nil, err
		}
		if caller.RestaurantID == "" {
			return []models.Order{}, nil
		}
		orders, err = s.store.Orders().FindByRestaurant(ctx, caller.RestaurantID)
	case models.RoleAdmin:
		orders, err = s.store.Orders().FindAll(ctx)
	default:
		return nil, apperrors.Forbidden("Access denied")
	}
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return orders, nil
}

// Get returns one order the caller may see
func (s *OrderService) Get(ctx context.Context, caller *auth.Principal, id string) (*models.Order, error) {
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if err := canView(caller, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order through the lifecycle. The order, its tracking
// projection and the history row change together or not at all.
func (s *OrderService) UpdateStatus(ctx context.Context, caller *auth.Principal, id string, to models.OrderStatus, note string) (*models.Order, error) {
	if !statemachine.IsKnown(to) {
		return nil, apperrors.Validation(fmt.Sprintf("Unknown status %q", to))
	}
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}

	actor, err := transitionActor(caller, order)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if statemachine.IsTerminal(from) {
		return nil, apperrors.InvalidTransition(fmt.Sprintf("Order is already %s", from), nil)
	}
	if err := statemachine.CanTransition(from, to, actor); err != nil {
		return nil, apperrors.InvalidTransition(err.Error(), err)
	}

	now := s.now()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Orders().UpdateStatus(ctx, id, from, to, now); err != nil {
			return err
		}
		if err := tx.Orders().UpdateTrackingStatus(ctx, id, to, now); err != nil {
			return fmt.Errorf("tracking for order %s: %w", id, err)
		}
		return tx.Orders().AddHistory(ctx, &models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  caller.UID,
			Note:       note,
			CreatedAt:  now,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleWrite) {
			return nil, apperrors.New(apperrors.KindConflict, "Order status changed concurrently, please retry", err)
		}
		if repository.IsNotFound(err) {
			// order exists, so the projection is missing
			s.log.Error("order tracking row missing", logger.RequestIDField(ctx),
				zap.String("order_id", id), zap.String("restaurant_id", order.RestaurantID), zap.Error(err))
			return nil, apperrors.Dependency("Order tracking is unavailable", err)
		}
		return nil, storeErr(err, "Order not found")
	}

	orderTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.log.Info("order status changed", logger.RequestIDField(ctx),
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("by", caller.UID))

	order.Status = to
	order.UpdatedAt = now
	if to == models.StatusDelivered {
		order.ActualDeliveryTime = &now
	}
	return order, nil
}

// UpdateTracking writes a live location; only the owning restaurant's owner may
func (s *OrderService) UpdateTracking(ctx context.Context, caller *auth.Principal, id string, location models.GeoPoint) (*models.OrderTracking, error) {
	if err := auth.RequireRole(caller, models.RoleRestaurantOwner); err != nil {
		return nil, err
	}
	if err := validateLocation(location); err != nil {
		return nil, err
	}
	order, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if !caller.OwnsRestaurant(order.RestaurantID) {
		return nil, apperrors.Forbidden("Order does not belong to your restaurant")
	}

	if err := s.store.Orders().UpdateTrackingLocation(ctx, id, location, s.now()); err != nil {
		return nil, storeErr(err, "Order tracking not found")
	}
	tracking, err := s.store.Orders().FindTracking(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order tracking not found")
	}
	return tracking, nil
}

// GetTracking returns the tracking projection of an order the caller may see
func (s *OrderService) GetTracking(ctx context.Context, caller *auth.Principal, id string) (*models.OrderTracking, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	tracking, err := s.store.Orders().FindTracking(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order tracking not found")
	}
	return tracking, nil
}

// History returns the audit trail of status changes, oldest first
func (s *OrderService) History(ctx context.Context, caller *auth.Principal, id string) ([]models.OrderStatusHistory, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	history, err := s.store.Orders().History(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	if history == nil {
		history = []models.OrderStatusHistory{}
	}
	return history, nil
}

func canView(caller *auth.Principal, order *models.Order) error {
	switch caller.Role {
	case models.RoleCustomer:
		if order.CustomerID == caller.UID {
			return nil
		}
	case models.RoleRestaurantOwner:
		if caller.OwnsRestaurant(order.RestaurantID) {
			return nil
		}
	case models.RoleAdmin:
		return nil
	}
	return apperrors.Forbidden("You do not have access to this order")
}

// transitionActor authorizes the caller against the order and names the
// state machine actor they act as
func transitionActor(caller *auth.Principal, order *models.Order) (statemachine.Actor, error) {
	switch caller.Role {
	case models.RoleRestaurantOwner:
		if !caller.OwnsRestaurant(order.RestaurantID) {
			return "", apperrors.Forbidden("Order does not belong to your restaurant")
		}
		return statemachine.ActorRestaurant, nil
	case models.RoleCustomer:
		if order.CustomerID != caller.UID {
			return "", apperrors.Forbidden("Order does not belong to you")
		}
		return statemachine.ActorCustomer, nil
	case models.RoleAdmin:
		return statemachine.ActorAdmin, nil
	}
	return "", apperrors.Forbidden("Access denied")
}
