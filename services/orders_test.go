package services

import (
	"math"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/models"
)

func (s *ServicesTestSuite) TestCreateOrder_TotalAndTracking() {
	_, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)

	order := s.placeOrder(customer, r.ID)
	s.Equal(25.0, order.TotalAmount)
	s.Equal(models.StatusPending, order.Status)
	s.Equal(models.PaymentPending, order.PaymentStatus)
	s.Equal("Soda", order.Items[1].Name)

	tracking, err := s.store.Orders().FindTracking(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, tracking.Status)
	s.Nil(tracking.Location)

	profile, err := s.store.Users().FindByID(s.ctx, customer.UID)
	s.Require().NoError(err)
	s.Equal([]string{order.ID}, profile.OrderHistory)
}

func (s *ServicesTestSuite) TestCreateOrder_Validation() {
	_, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	valid := CreateOrderInput{
		RestaurantID:    r.ID,
		Items:           []models.OrderItem{{MenuItemID: "pizza", Price: 10, Quantity: 1}},
		PaymentMethod:   models.PaymentOnline,
		DeliveryAddress: "42 Elm St",
	}

	withItem := func(it models.OrderItem) func(in *CreateOrderInput) {
		return func(in *CreateOrderInput) { in.Items = []models.OrderItem{it} }
	}
	cases := map[string]func(in *CreateOrderInput){
		"no items":         func(in *CreateOrderInput) { in.Items = nil },
		"zero quantity":    withItem(models.OrderItem{MenuItemID: "pizza", Price: 10}),
		"negative price":   withItem(models.OrderItem{MenuItemID: "pizza", Price: -1, Quantity: 1}),
		"non-finite price": withItem(models.OrderItem{MenuItemID: "pizza", Price: math.Inf(1), Quantity: 1}),
		"unknown item":     withItem(models.OrderItem{MenuItemID: "sushi", Price: 1, Quantity: 1}),
		"payment method":   func(in *CreateOrderInput) { in.PaymentMethod = "crypto" },
		"no address":       func(in *CreateOrderInput) { in.DeliveryAddress = " " },
		"bad coordinates":  func(in *CreateOrderInput) { in.DeliveryLocation = &models.GeoPoint{Latitude: 91} },
		"NaN coordinates":  func(in *CreateOrderInput) { in.DeliveryLocation = &models.GeoPoint{Latitude: math.NaN()} },
	}
	for name, mutate := range cases {
		in := valid
		mutate(&in)
		_, err := s.orders.Create(s.ctx, customer, in)
		s.ErrorIs(err, apperrors.ErrValidation, name)
	}

	orders, err := s.orders.List(s.ctx, customer)
	s.Require().NoError(err)
	s.Empty(orders)
}

func (s *ServicesTestSuite) TestCreateOrder_RequiresCustomerAndRestaurant() {
	owner, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	in := CreateOrderInput{
		RestaurantID:    r.ID,
		Items:           []models.OrderItem{{MenuItemID: "pizza", Price: 10, Quantity: 1}},
		PaymentMethod:   models.PaymentOnline,
		DeliveryAddress: "42 Elm St",
	}

	_, err := s.orders.Create(s.ctx, owner, in)
	s.ErrorIs(err, apperrors.ErrForbidden)

	in.RestaurantID = "missing"
	_, err = s.orders.Create(s.ctx, customer, in)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ServicesTestSuite) TestListOrders_ScopedPerRole() {
	owner, r := s.ownerWithRestaurant()
	otherOwner, other := s.ownerWithRestaurant()
	alice := s.principal(models.RoleCustomer, false)
	bob := s.principal(models.RoleCustomer, false)
	admin := s.principal(models.RoleAdmin, false)

	a1 := s.placeOrder(alice, r.ID)
	s.placeOrder(bob, r.ID)
	s.placeOrder(alice, other.ID)

	orders, err := s.orders.List(s.ctx, alice)
	s.Require().NoError(err)
	s.Len(orders, 2)
	for _, o := range orders {
		s.Equal(alice.UID, o.CustomerID)
	}

	orders, err = s.orders.List(s.ctx, owner)
	s.Require().NoError(err)
	s.Len(orders, 2)
	for _, o := range orders {
		s.Equal(r.ID, o.RestaurantID)
	}

	orders, err = s.orders.List(s.ctx, otherOwner)
	s.Require().NoError(err)
	s.Len(orders, 1)

	orders, err = s.orders.List(s.ctx, admin)
	s.Require().NoError(err)
	s.Len(orders, 3)

	fresh := s.principal(models.RoleRestaurantOwner, true)
	orders, err = s.orders.List(s.ctx, fresh)
	s.Require().NoError(err)
	s.Empty(orders)

	pending := &auth.Principal{UID: owner.UID, Role: models.RoleRestaurantOwner, RestaurantID: r.ID}
	_, err = s.orders.List(s.ctx, pending)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.orders.List(s.ctx, &auth.Principal{UID: "x", Role: "courier"})
	s.ErrorIs(err, apperrors.ErrForbidden)

	got, err := s.orders.Get(s.ctx, alice, a1.ID)
	s.Require().NoError(err)
	s.Equal(a1.ID, got.ID)
	_, err = s.orders.Get(s.ctx, bob, a1.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.orders.Get(s.ctx, otherOwner, a1.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestOrderScenario_OwnerConfirms() {
	owner, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	order := s.placeOrder(customer, r.ID)
	s.Equal(25.0, order.TotalAmount)

	_, err := s.orders.UpdateStatus(s.ctx, owner, order.ID, models.StatusConfirmed, "")
	s.Require().NoError(err)

	got, err := s.orders.Get(s.ctx, customer, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusConfirmed, got.Status)
	s.Equal(25.0, got.TotalAmount)

	tracking, err := s.orders.GetTracking(s.ctx, customer, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusConfirmed, tracking.Status)

	history, err := s.orders.History(s.ctx, customer, order.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(models.StatusPending, history[0].FromStatus)
	s.Equal(models.StatusConfirmed, history[0].ToStatus)
	s.Equal(owner.UID, history[0].ChangedBy)
}

func (s *ServicesTestSuite) TestUpdateStatus_FullLifecycleKeepsTotal() {
	owner, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	order := s.placeOrder(customer, r.ID)

	for _, next := range []models.OrderStatus{
		models.StatusConfirmed, models.StatusPreparing, models.StatusReady,
		models.StatusDelivering, models.StatusDelivered,
	} {
		_, err := s.orders.UpdateStatus(s.ctx, owner, order.ID, next, "")
		s.Require().NoError(err, next)
	}

	got, err := s.store.Orders().FindByID(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDelivered, got.Status)
	s.Equal(25.0, got.TotalAmount)
	s.NotNil(got.ActualDeliveryTime)

	// terminal
	_, err = s.orders.UpdateStatus(s.ctx, owner, order.ID, models.StatusCancelled, "")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	s.ErrorContains(err, "already delivered")

	admin := s.principal(models.RoleAdmin, false)
	_, err = s.orders.UpdateStatus(s.ctx, admin, order.ID, models.StatusPending, "")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *ServicesTestSuite) TestUpdateStatus_ForeignCustomerIsForbidden() {
	_, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	stranger := s.principal(models.RoleCustomer, false)
	order := s.placeOrder(customer, r.ID)

	_, err := s.orders.UpdateStatus(s.ctx, stranger, order.ID, models.StatusCancelled, "")
	s.ErrorIs(err, apperrors.ErrForbidden)

	got, err := s.store.Orders().FindByID(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)
	tracking, err := s.store.Orders().FindTracking(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, tracking.Status)
	history, err := s.store.Orders().History(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Empty(history)
}

func (s *ServicesTestSuite) TestUpdateStatus_Rules() {
	owner, r := s.ownerWithRestaurant()
	otherOwner, _ := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	admin := s.principal(models.RoleAdmin, false)
	order := s.placeOrder(customer, r.ID)

	// customers can only cancel
	_, err := s.orders.UpdateStatus(s.ctx, customer, order.ID, models.StatusConfirmed, "")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	// owners cannot skip steps
	_, err = s.orders.UpdateStatus(s.ctx, owner, order.ID, models.StatusReady, "")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.orders.UpdateStatus(s.ctx, otherOwner, order.ID, models.StatusConfirmed, "")
	s.ErrorIs(err, apperrors.ErrForbidden)

	pending := &auth.Principal{UID: owner.UID, Role: models.RoleRestaurantOwner, RestaurantID: r.ID}
	_, err = s.orders.UpdateStatus(s.ctx, pending, order.ID, models.StatusConfirmed, "")
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.orders.UpdateStatus(s.ctx, owner, order.ID, "teleported", "")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.orders.UpdateStatus(s.ctx, owner, "missing", models.StatusConfirmed, "")
	s.ErrorIs(err, apperrors.ErrNotFound)

	// admin may jump
	_, err = s.orders.UpdateStatus(s.ctx, admin, order.ID, models.StatusDelivering, "manual fix")
	s.Require().NoError(err)

	// customer cancel is only allowed early
	_, err = s.orders.UpdateStatus(s.ctx, customer, order.ID, models.StatusCancelled, "")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *ServicesTestSuite) TestUpdateStatus_CustomerCancels() {
	_, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	order := s.placeOrder(customer, r.ID)

	updated, err := s.orders.UpdateStatus(s.ctx, customer, order.ID, models.StatusCancelled, "changed my mind")
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, updated.Status)

	tracking, err := s.store.Orders().FindTracking(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, tracking.Status)
}

func (s *ServicesTestSuite) TestUpdateTracking() {
	owner, r := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	admin := s.principal(models.RoleAdmin, false)
	order := s.placeOrder(customer, r.ID)

	loc := models.GeoPoint{Latitude: 52.52, Longitude: 13.405}
	tracking, err := s.orders.UpdateTracking(s.ctx, owner, order.ID, loc)
	s.Require().NoError(err)
	s.Require().NotNil(tracking.Location)
	s.Equal(loc, *tracking.Location)
	s.Equal(models.StatusPending, tracking.Status)

	got, err := s.store.Orders().FindByID(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, got.Status)

	_, err = s.orders.UpdateTracking(s.ctx, customer, order.ID, loc)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.orders.UpdateTracking(s.ctx, admin, order.ID, loc)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.orders.UpdateTracking(s.ctx, owner, order.ID, models.GeoPoint{Longitude: 200})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ServicesTestSuite) TestUpdateTracking_ForeignOwnerIsForbidden() {
	_, r := s.ownerWithRestaurant()
	ownerB, _ := s.ownerWithRestaurant()
	customer := s.principal(models.RoleCustomer, false)
	order := s.placeOrder(customer, r.ID)

	_, err := s.orders.UpdateTracking(s.ctx, ownerB, order.ID, models.GeoPoint{Latitude: 1, Longitude: 1})
	s.ErrorIs(err, apperrors.ErrForbidden)

	tracking, err := s.store.Orders().FindTracking(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Nil(tracking.Location)
}
