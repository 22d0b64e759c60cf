package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// OpeningHours is keyed by weekday name ("monday", ...)
type OpeningHours map[string]DayHours

type Restaurant struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	OwnerID      string       `json:"ownerId" gorm:"not null;index;size:36"`
	Name         string       `json:"name" gorm:"not null"`
	Description  string       `json:"description"`
	Address      string       `json:"address"`
	Location     GeoPoint     `json:"location" gorm:"serializer:json"`
	Menu         []MenuItem   `json:"menu" gorm:"serializer:json"`
	Rating       float64      `json:"rating" gorm:"not null;default:0"`
	TotalRatings int          `json:"totalRatings" gorm:"not null;default:0"`
	OpeningHours OpeningHours `json:"openingHours" gorm:"serializer:json"`
	IsActive     bool         `json:"isActive" gorm:"not null"`
	MenuVersion  int          `json:"-" gorm:"not null;default:0"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// MenuItemIndex does a linear scan of the embedded menu. Returns -1 when absent.
func (r *Restaurant) MenuItemIndex(itemID string) int {
	for i := range r.Menu {
		if r.Menu[i].ID == itemID {
			return i
		}
	}
	return -1
}

// MenuItem lives embedded in its restaurant's menu; ids are unique only there.
type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RestaurantReview is append-only.
type RestaurantReview struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	RestaurantID string    `json:"restaurantId" gorm:"not null;index;size:36"`
	UserID       string    `json:"userId" gorm:"not null;index;size:36"`
	Rating       int       `json:"rating" gorm:"not null"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (r *RestaurantReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
