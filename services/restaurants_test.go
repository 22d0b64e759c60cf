package services

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/models"
)

func (s *ServicesTestSuite) TestCreateRestaurant_BackfillsOwner() {
	owner := s.principal(models.RoleRestaurantOwner, true)
	r, err := s.restaurants.Create(s.ctx, owner, RestaurantInput{
		Name:     "Noodle Bar",
		Address:  "7 Side St",
		Location: models.GeoPoint{Latitude: 1.29, Longitude: 103.85},
		OpeningHours: models.OpeningHours{
			"monday": {Open: "10:00", Close: "22:00"},
		},
	})
	s.Require().NoError(err)
	s.Empty(r.Menu)
	s.Zero(r.Rating)
	s.Zero(r.TotalRatings)
	s.True(r.IsActive)

	profile, err := s.store.Users().FindByID(s.ctx, owner.UID)
	s.Require().NoError(err)
	s.Equal(r.ID, profile.OwnedRestaurantID())

	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("22:00", got.OpeningHours["monday"].Close)
}

func (s *ServicesTestSuite) TestCreateRestaurant_RequiresApprovedOwner() {
	_, err := s.restaurants.Create(s.ctx, s.principal(models.RoleRestaurantOwner, false), RestaurantInput{Name: "X", Address: "Y"})
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.restaurants.Create(s.ctx, s.principal(models.RoleCustomer, false), RestaurantInput{Name: "X", Address: "Y"})
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.restaurants.Create(s.ctx, s.principal(models.RoleRestaurantOwner, true), RestaurantInput{Name: " "})
	s.ErrorIs(err, apperrors.ErrValidation)

	all, err := s.restaurants.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServicesTestSuite) TestUpdateRestaurant() {
	owner, r := s.ownerWithRestaurant()
	stranger, _ := s.ownerWithRestaurant()

	name := "Trattoria Nuova"
	closed := false
	got, err := s.restaurants.Update(s.ctx, owner, r.ID, RestaurantPatch{Name: &name, IsActive: &closed})
	s.Require().NoError(err)
	s.Equal(name, got.Name)
	s.False(got.IsActive)
	s.Equal("1 Main St", got.Address)
	s.Len(got.Menu, 2)

	_, err = s.restaurants.Update(s.ctx, stranger, r.ID, RestaurantPatch{Name: &name})
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.restaurants.Update(s.ctx, owner, "missing", RestaurantPatch{Name: &name})
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.restaurants.Update(s.ctx, owner, r.ID, RestaurantPatch{})
	s.ErrorIs(err, apperrors.ErrValidation)

	// an inactive restaurant takes no orders
	_, err = s.orders.Create(s.ctx, s.principal(models.RoleCustomer, false), CreateOrderInput{
		RestaurantID:    r.ID,
		Items:           []models.OrderItem{{MenuItemID: "pizza", Price: 10, Quantity: 1}},
		PaymentMethod:   models.PaymentOnline,
		DeliveryAddress: "42 Elm St",
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ServicesTestSuite) TestAddMenuItem() {
	owner, r := s.ownerWithRestaurant()

	item, err := s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Tiramisu", Price: 6.5, Category: "dessert"}, s.image("tira misu.png"))
	s.Require().NoError(err)
	s.NotEmpty(item.ID)
	s.True(item.IsAvailable)
	s.True(strings.HasPrefix(item.ImageURL, "https://blobs.test/restaurants/"+r.ID+"/menu/"))
	s.True(strings.HasSuffix(item.ImageURL, "-tira_misu.png"))

	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Menu, 3)
	s.Equal("Tiramisu", got.Menu[2].Name)
}

func (s *ServicesTestSuite) TestAddMenuItem_Rejections() {
	owner, r := s.ownerWithRestaurant()
	stranger, _ := s.ownerWithRestaurant()

	_, err := s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Bread", Price: 2}, nil)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Bread", Price: -2}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Bread", Price: math.NaN()}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Bread", Price: math.Inf(1)}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.restaurants.AddMenuItem(s.ctx, stranger, r.ID, MenuItemInput{Name: "Bread", Price: 2}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.restaurants.AddMenuItem(s.ctx, owner, "missing", MenuItemInput{Name: "Bread", Price: 2}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrNotFound)

	pending := &auth.Principal{UID: owner.UID, Role: models.RoleRestaurantOwner, RestaurantID: r.ID}
	_, err = s.restaurants.AddMenuItem(s.ctx, pending, r.ID, MenuItemInput{Name: "Bread", Price: 2}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrForbidden)

	s.blobs.failPut = true
	_, err = s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Bread", Price: 2}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrDependency)
	s.Equal(http.StatusInternalServerError, apperrors.StatusCode(err))

	s.blobs.putErr = fmt.Errorf("put object: %w", context.DeadlineExceeded)
	_, err = s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Bread", Price: 2}, s.image("b.png"))
	s.ErrorIs(err, apperrors.ErrDependency)
	s.Equal(http.StatusServiceUnavailable, apperrors.StatusCode(err))

	s.Empty(s.blobs.objects)
}

func (s *ServicesTestSuite) TestUpdateMenuItem_RejectsNonFinitePrice() {
	owner, r := s.ownerWithRestaurant()

	for _, price := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		p := price
		_, err := s.restaurants.UpdateMenuItem(s.ctx, owner, r.ID, "pizza", MenuItemPatch{Price: &p}, nil)
		s.ErrorIs(err, apperrors.ErrValidation)
	}

	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(10.0, got.Menu[got.MenuItemIndex("pizza")].Price)
}

func (s *ServicesTestSuite) TestCreateRestaurant_RejectsNonFiniteLocation() {
	owner := s.principal(models.RoleRestaurantOwner, true)
	_, err := s.restaurants.Create(s.ctx, owner, RestaurantInput{
		Name:     "Nowhere",
		Address:  "0 Void Rd",
		Location: models.GeoPoint{Latitude: math.NaN(), Longitude: 10},
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ServicesTestSuite) TestUpdateMenuItem_ReplacesImage() {
	owner, r := s.ownerWithRestaurant()
	item, err := s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Salad", Price: 7}, s.image("old.png"))
	s.Require().NoError(err)
	oldURL := item.ImageURL

	price := 8.0
	unavailable := false
	updated, err := s.restaurants.UpdateMenuItem(s.ctx, owner, r.ID, item.ID, MenuItemPatch{Price: &price, IsAvailable: &unavailable}, s.image("new.png"))
	s.Require().NoError(err)
	s.Equal(8.0, updated.Price)
	s.False(updated.IsAvailable)
	s.Equal("Salad", updated.Name)
	s.NotEqual(oldURL, updated.ImageURL)

	s.Equal([]string{oldURL}, s.blobs.deletions)
	s.Contains(s.blobs.objects, updated.ImageURL)
	s.NotContains(s.blobs.objects, oldURL)
}

func (s *ServicesTestSuite) TestUpdateMenuItem_UnknownItemReleasesUpload() {
	owner, r := s.ownerWithRestaurant()
	name := "Ghost"
	_, err := s.restaurants.UpdateMenuItem(s.ctx, owner, r.ID, "nope", MenuItemPatch{Name: &name}, s.image("g.png"))
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Len(s.blobs.deletions, 1)
	s.Empty(s.blobs.objects)
}

func (s *ServicesTestSuite) TestDeleteMenuItem() {
	owner, r := s.ownerWithRestaurant()
	item, err := s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Soup", Price: 4}, s.image("soup.png"))
	s.Require().NoError(err)

	s.Require().NoError(s.restaurants.DeleteMenuItem(s.ctx, owner, r.ID, item.ID))
	got, err := s.restaurants.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(-1, got.MenuItemIndex(item.ID))
	s.Len(got.Menu, 2)
	s.Equal([]string{item.ImageURL}, s.blobs.deletions)

	s.ErrorIs(s.restaurants.DeleteMenuItem(s.ctx, owner, r.ID, item.ID), apperrors.ErrNotFound)
}

func (s *ServicesTestSuite) TestDeleteMenuItem_OrphanedBlobIsNotAnError() {
	owner, r := s.ownerWithRestaurant()
	item, err := s.restaurants.AddMenuItem(s.ctx, owner, r.ID, MenuItemInput{Name: "Soup", Price: 4}, s.image("soup.png"))
	s.Require().NoError(err)

	s.blobs.failDel = true
	s.NoError(s.restaurants.DeleteMenuItem(s.ctx, owner, r.ID, item.ID))
	s.Contains(s.blobs.objects, item.ImageURL)
}
