package services

import (
	"context"
	"strings"

	"food-ordering-api/apperrors"
	"food-ordering-api/auth"
	"food-ordering-api/identity"
	"food-ordering-api/logger"
	"food-ordering-api/models"
	"food-ordering-api/notify"
	"food-ordering-api/repository"

	"go.uber.org/zap"
)

type RegisterInput struct {
	Email       string
	Password    string
	Role        models.UserRole
	DisplayName string
	Phone       string
	Address     string
}

// RegistrationService onboards users and gates restaurant owners behind admin approval
type RegistrationService struct {
	provider identity.Provider
	users    repository.UserRepository
	notifier notify.Notifier
	log      *zap.Logger
}

func NewRegistrationService(provider identity.Provider, users repository.UserRepository, notifier notify.Notifier, log *zap.Logger) *RegistrationService {
	return &RegistrationService{provider: provider, users: users, notifier: notifier, log: log}
}

// Register creates the account, stamps the role claim and writes the profile.
// A failed profile write deletes the account again; if that also fails the
// caller gets a PartialWrite error naming the orphaned uid.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, apperrors.Validation("Role must be one of customer, restaurant_owner, admin")
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperrors.Validation("Email and password are required")
	}

	acc, err := s.provider.CreateAccount(ctx, in.Email, in.Password, in.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.provider.SetRoleClaim(ctx, acc.UID, in.Role); err != nil {
		return nil, s.compensate(ctx, acc, "set_role_claim", err)
	}

	user := &models.User{
		ID:          acc.UID,
		Email:       acc.Email,
		Role:        in.Role,
		DisplayName: in.DisplayName,
		Phone:       in.Phone,
		Address:     in.Address,
	}
	if in.Role == models.RoleCustomer {
		user.FavoriteRestaurants = []string{}
		user.OrderHistory = []string{}
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.compensate(ctx, acc, "create_profile", err)
	}

	registrationsTotal.WithLabelValues(string(in.Role)).Inc()
	if err := s.notifier.Welcome(ctx, user); err != nil {
		s.log.Warn("welcome notification failed", logger.RequestIDField(ctx), zap.String("uid", user.ID), zap.Error(err))
	}
	return user, nil
}

func (s *RegistrationService) compensate(ctx context.Context, acc *models.Account, step string, cause error) error {
	delErr := s.provider.DeleteAccount(ctx, acc.UID)
	if delErr == nil {
		return storeErr(cause, "Account not found")
	}
	return apperrors.PartialWrite("Registration partially completed", cause).
		With("operation", "register").
		With("uid", acc.UID).
		With("email", acc.Email).
		With("step", step).
		With("compensation_error", delErr.Error())
}

// ApproveOwner flips isApproved once; approving an approved owner is a no-op.
func (s *RegistrationService) ApproveOwner(ctx context.Context, caller *auth.Principal, uid string) (*models.User, error) {
	if err := auth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if user.Role != models.RoleRestaurantOwner {
		return nil, apperrors.Validation("User is not a restaurant owner")
	}

	changed, err := s.users.Approve(ctx, uid)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	user.IsApproved = true
	if changed {
		s.log.Info("restaurant owner approved", logger.RequestIDField(ctx), zap.String("uid", uid), zap.String("by", caller.UID))
		if err := s.notifier.OwnerApproved(ctx, user); err != nil {
			s.log.Warn("approval notification failed", logger.RequestIDField(ctx), zap.String("uid", uid), zap.Error(err))
		}
	}
	return user, nil
}

// PendingOwners lists restaurant owners awaiting approval, unordered
func (s *RegistrationService) PendingOwners(ctx context.Context, caller *auth.Principal) ([]models.User, error) {
	if err := auth.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := s.users.FindPendingOwners(ctx)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Profile returns the caller's own profile
func (s *RegistrationService) Profile(ctx context.Context, caller *auth.Principal) (*models.User, error) {
	user, err := s.users.FindByID(ctx, caller.UID)
	if err != nil {
		return nil, storeErr(err, "Profile not found")
	}
	return user, nil
}

// Login signs the user in and returns a bearer token with the profile
func (s *RegistrationService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	token, acc, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	user, err := s.users.FindByID(ctx, acc.UID)
	if err != nil {
		return "", nil, storeErr(err, "Profile not found")
	}
	return token, user, nil
}
