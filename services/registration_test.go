package services

import (
	"context"
	"errors"

	"food-ordering-api/apperrors"
	"food-ordering-api/identity"
	"food-ordering-api/models"
	"food-ordering-api/repository"
)

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) Create(context.Context, *models.User) error {
	return errors.New("profile store down")
}

type undeletableProvider struct {
	*identity.JWTProvider
}

func (undeletableProvider) DeleteAccount(context.Context, string) error {
	return errors.New("identity provider down")
}

func (s *ServicesTestSuite) TestRegister_OwnerStartsUnapproved() {
	user, err := s.registration.Register(s.ctx, RegisterInput{
		Email: "owner@example.com", Password: "secret1", Role: models.RoleRestaurantOwner, DisplayName: "Olive",
	})
	s.Require().NoError(err)
	s.False(user.IsApproved)

	acc, err := s.provider.GetAccount(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleRestaurantOwner, acc.Role)
	s.Equal([]string{user.ID}, s.notifier.welcomed)
}

func (s *ServicesTestSuite) TestRegister_CustomerDefaults() {
	user, err := s.registration.Register(s.ctx, RegisterInput{
		Email: "cust@example.com", Password: "secret1", Role: models.RoleCustomer,
	})
	s.Require().NoError(err)

	got, err := s.store.Users().FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Empty(got.FavoriteRestaurants)
	s.Empty(got.OrderHistory)
}

func (s *ServicesTestSuite) TestRegister_InvalidRole() {
	_, err := s.registration.Register(s.ctx, RegisterInput{Email: "x@example.com", Password: "secret1", Role: "driver"})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Empty(s.notifier.welcomed)
}

func (s *ServicesTestSuite) TestRegister_DuplicateEmail() {
	in := RegisterInput{Email: "dup@example.com", Password: "secret1", Role: models.RoleCustomer}
	_, err := s.registration.Register(s.ctx, in)
	s.Require().NoError(err)
	_, err = s.registration.Register(s.ctx, in)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *ServicesTestSuite) TestRegister_NotificationFailureIsNotFatal() {
	s.notifier.err = errors.New("sns down")
	_, err := s.registration.Register(s.ctx, RegisterInput{Email: "n@example.com", Password: "secret1", Role: models.RoleCustomer})
	s.NoError(err)
}

func (s *ServicesTestSuite) TestRegister_ProfileFailureCompensates() {
	svc := NewRegistrationService(s.provider, failingUsers{s.store.Users()}, s.notifier, s.registration.log)
	_, err := svc.Register(s.ctx, RegisterInput{Email: "comp@example.com", Password: "secret1", Role: models.RoleCustomer})
	s.ErrorIs(err, apperrors.ErrDependency)

	// the account was rolled back, so the email is free again
	_, err = s.registration.Register(s.ctx, RegisterInput{Email: "comp@example.com", Password: "secret1", Role: models.RoleCustomer})
	s.NoError(err)
}

func (s *ServicesTestSuite) TestRegister_FailedCompensationIsPartialWrite() {
	svc := NewRegistrationService(undeletableProvider{s.provider}, failingUsers{s.store.Users()}, s.notifier, s.registration.log)
	_, err := svc.Register(s.ctx, RegisterInput{Email: "partial@example.com", Password: "secret1", Role: models.RoleCustomer})
	s.Require().ErrorIs(err, apperrors.ErrPartialWrite)

	var appErr *apperrors.Error
	s.Require().ErrorAs(err, &appErr)
	s.NotEmpty(appErr.Fields["uid"])
	s.Equal("partial@example.com", appErr.Fields["email"])
}

func (s *ServicesTestSuite) TestApprovalWorkflow() {
	admin := s.principal(models.RoleAdmin, false)
	owner, err := s.registration.Register(s.ctx, RegisterInput{
		Email: "newowner@example.com", Password: "secret1", Role: models.RoleRestaurantOwner,
	})
	s.Require().NoError(err)

	pending, err := s.registration.PendingOwners(s.ctx, admin)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(owner.ID, pending[0].ID)

	approved, err := s.registration.ApproveOwner(s.ctx, admin, owner.ID)
	s.Require().NoError(err)
	s.True(approved.IsApproved)

	// idempotent
	approved, err = s.registration.ApproveOwner(s.ctx, admin, owner.ID)
	s.Require().NoError(err)
	s.True(approved.IsApproved)
	s.Equal([]string{owner.ID}, s.notifier.approved)

	pending, err = s.registration.PendingOwners(s.ctx, admin)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *ServicesTestSuite) TestApproval_RequiresAdmin() {
	customer := s.principal(models.RoleCustomer, false)
	owner := s.principal(models.RoleRestaurantOwner, false)

	_, err := s.registration.ApproveOwner(s.ctx, customer, owner.UID)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.registration.PendingOwners(s.ctx, owner)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestApproval_UnknownOrNonOwner() {
	admin := s.principal(models.RoleAdmin, false)
	customer := s.principal(models.RoleCustomer, false)

	_, err := s.registration.ApproveOwner(s.ctx, admin, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.registration.ApproveOwner(s.ctx, admin, customer.UID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ServicesTestSuite) TestLogin() {
	user, err := s.registration.Register(s.ctx, RegisterInput{Email: "login@example.com", Password: "secret1", Role: models.RoleCustomer})
	s.Require().NoError(err)

	token, profile, err := s.registration.Login(s.ctx, "login@example.com", "secret1")
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(user.ID, profile.ID)

	_, _, err = s.registration.Login(s.ctx, "login@example.com", "wrong")
	s.ErrorIs(err, apperrors.ErrUnauthenticated)
}
