package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStaleWrite is returned when a compare-and-swap update lost a race
var ErrStaleWrite = errors.New("document changed concurrently")

// Store groups the collections of the document store. Transaction runs fn
// against a Store bound to a single database transaction.
type Store interface {
	Users() UserRepository
	Restaurants() RestaurantRepository
	Orders() OrderRepository
	Reviews() ReviewRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository             { return &GormUserRepository{db: s.db} }
func (s *GormStore) Restaurants() RestaurantRepository { return &GormRestaurantRepository{db: s.db} }
func (s *GormStore) Orders() OrderRepository           { return &GormOrderRepository{db: s.db} }
func (s *GormStore) Reviews() ReviewRepository         { return &GormReviewRepository{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

// IsNotFound reports whether err is gorm's record-not-found
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
