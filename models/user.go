package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer        UserRole = "customer"
	RoleRestaurantOwner UserRole = "restaurant_owner"
	RoleAdmin           UserRole = "admin"
)

// Valid reports whether r is one of the recognized roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleRestaurantOwner, RoleAdmin:
		return true
	}
	return false
}

// User is the profile document. Its ID is the identity provider's uid.
type User struct {
	ID          string   `json:"id" gorm:"primaryKey;size:36"`
	Email       string   `json:"email" gorm:"uniqueIndex;not null"`
	Role        UserRole `json:"role" gorm:"not null;index"`
	DisplayName string   `json:"displayName"`
	Phone       string   `json:"phone,omitempty"`
	Address     string   `json:"address,omitempty"`

	// restaurant_owner only
	IsApproved   bool    `json:"isApproved" gorm:"not null;index"`
	RestaurantID *string `json:"restaurantId,omitempty" gorm:"size:36"`

	// customer only
	FavoriteRestaurants []string `json:"favoriteRestaurants,omitempty" gorm:"serializer:json"`
	OrderHistory        []string `json:"orderHistory,omitempty" gorm:"serializer:json"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnedRestaurantID returns the back-referenced restaurant id, or "" when the
// owner has not created a restaurant yet.
func (u *User) OwnedRestaurantID() string {
	if u.RestaurantID == nil {
		return ""
	}
	return *u.RestaurantID
}

// Account is the identity provider's record. Role is the custom claim stamped
// once at registration; it is never taken from a request body afterwards.
type Account struct {
	UID          string    `json:"uid" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	DisplayName  string    `json:"displayName"`
	Role         UserRole  `json:"role"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
