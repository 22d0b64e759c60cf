package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentOnline  PaymentMethod = "online"
	PaymentOffline PaymentMethod = "offline"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentOffline
}

type Order struct {
	ID                 string        `json:"id" gorm:"primaryKey;size:36"`
	RestaurantID       string        `json:"restaurantId" gorm:"not null;index;size:36"`
	CustomerID         string        `json:"customerId" gorm:"not null;index;size:36"`
	Items              []OrderItem   `json:"items" gorm:"serializer:json"`
	TotalAmount        float64       `json:"totalAmount" gorm:"not null"`
	Status             OrderStatus   `json:"status" gorm:"not null;index"`
	PaymentStatus      PaymentStatus `json:"paymentStatus" gorm:"not null"`
	PaymentMethod      PaymentMethod `json:"paymentMethod" gorm:"not null"`
	DeliveryAddress    string        `json:"deliveryAddress" gorm:"not null"`
	DeliveryLocation   *GeoPoint     `json:"deliveryLocation,omitempty" gorm:"serializer:json"`
	ActualDeliveryTime *time.Time    `json:"actualDeliveryTime,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem snapshots name and price at order time
type OrderItem struct {
	MenuItemID          string  `json:"menuItemId"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	Price               float64 `json:"price"`
	SpecialInstructions string  `json:"specialInstructions,omitempty"`
}

// OrderTotal is Σ price × quantity over items.
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// OrderTracking is the 1:1 projection of an order, keyed by order id.
type OrderTracking struct {
	OrderID   string      `json:"orderId" gorm:"primaryKey;size:36"`
	Status    OrderStatus `json:"status" gorm:"not null"`
	Location  *GeoPoint   `json:"location,omitempty" gorm:"serializer:json"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"not null;index;size:36"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"createdAt"`
}
