// Package auth resolves bearer credentials into an authorized Principal.
// The role always comes from the identity provider's claim, never from a request body.
package auth

import (
	"context"
	"strings"

	"food-ordering-api/apperrors"
	"food-ordering-api/identity"
	"food-ordering-api/models"
	"food-ordering-api/repository"
)

// Principal is the verified caller of a request
type Principal struct {
	UID          string          `json:"uid"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	IsApproved   bool            `json:"isApproved"`
	RestaurantID string          `json:"restaurantId,omitempty"`
}

// ActiveOwner reports whether p may act as a restaurant owner
func (p *Principal) ActiveOwner() bool {
	return p.Role == models.RoleRestaurantOwner && p.IsApproved
}

// OwnsRestaurant reports whether p is the approved owner of restaurantID
func (p *Principal) OwnsRestaurant(restaurantID string) bool {
	return p.ActiveOwner() && p.RestaurantID != "" && p.RestaurantID == restaurantID
}

type Resolver struct {
	provider identity.Provider
	users    repository.UserRepository
}

func NewResolver(provider identity.Provider, users repository.UserRepository) *Resolver {
	return &Resolver{provider: provider, users: users}
}

// Verify checks the bearer token and returns its claims
func (r *Resolver) Verify(ctx context.Context, token string) (*identity.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.Unauthenticated("Authorization header required (Bearer <token>)")
	}
	claims, err := r.provider.VerifyToken(ctx, token)
	if err != nil {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}
	return claims, nil
}

// ResolveRole reads the role claim stamped at registration
func (r *Resolver) ResolveRole(ctx context.Context, uid string) (models.UserRole, error) {
	acc, err := r.provider.GetAccount(ctx, uid)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return "", apperrors.Unauthenticated("Account no longer exists")
		}
		return "", err
	}
	if acc.Disabled {
		return "", apperrors.Unauthenticated("Account disabled")
	}
	if acc.Role == "" {
		return "", apperrors.Unauthenticated("No role claim on account")
	}
	return acc.Role, nil
}

// Resolve builds the Principal for uid: role from the claim, approval and
// restaurant back-reference from the profile.
func (r *Resolver) Resolve(ctx context.Context, uid string) (*Principal, error) {
	role, err := r.ResolveRole(ctx, uid)
	if err != nil {
		return nil, err
	}
	user, err := r.users.FindByID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.Unauthenticated("Profile no longer exists")
		}
		return nil, apperrors.Dependency("Failed to load profile", err)
	}
	return &Principal{
		UID:          uid,
		Email:        user.Email,
		Role:         role,
		IsApproved:   user.IsApproved,
		RestaurantID: user.OwnedRestaurantID(),
	}, nil
}

// Authenticate is Verify followed by Resolve
func (r *Resolver) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := r.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, claims.UID)
}

// RequireRole fails with Forbidden unless p holds one of roles. Restaurant owners
// must also be approved.
func RequireRole(p *Principal, roles ...models.UserRole) error {
	if p == nil || p.Role == "" {
		return apperrors.Unauthenticated("No role claim on account")
	}
	for _, role := range roles {
		if p.Role != role {
			continue
		}
		if role == models.RoleRestaurantOwner && !p.IsApproved {
			return apperrors.Forbidden("Restaurant owner account is pending approval")
		}
		return nil
	}
	return apperrors.Forbidden("Access denied. Required role(s): " + rolesString(roles))
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
