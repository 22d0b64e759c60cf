// Package identity is the identity provider: it owns credentials, issues and
// verifies bearer tokens, and stores the role claim stamped at registration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"food-ordering-api/apperrors"
	"food-ordering-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims carried in a signed bearer token
type Claims struct {
	UID   string          `json:"uid"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Provider interface {
	CreateAccount(ctx context.Context, email, password, displayName string) (*models.Account, error)
	SetRoleClaim(ctx context.Context, uid string, role models.UserRole) error
	DeleteAccount(ctx context.Context, uid string) error
	GetAccount(ctx context.Context, uid string) (*models.Account, error)
	SignIn(ctx context.Context, email, password string) (string, *models.Account, error)
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}

// JWTProvider keeps accounts in the database and signs HS256 tokens
type JWTProvider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTProvider(db *gorm.DB, secret []byte, ttl time.Duration) *JWTProvider {
	return &JWTProvider{db: db, secret: secret, ttl: ttl, now: time.Now}
}

func (p *JWTProvider) CreateAccount(ctx context.Context, email, password, displayName string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return nil, apperrors.Validation("Email and a password of at least 6 characters are required")
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Dependency("Failed to look up account", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Dependency("Failed to hash password", err)
	}

	acc := &models.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := p.db.WithContext(ctx).Create(acc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, apperrors.Dependency("Failed to create account", err)
	}
	return acc, nil
}

// SetRoleClaim stamps the role once; an account that already carries a role keeps it.
func (p *JWTProvider) SetRoleClaim(ctx context.Context, uid string, role models.UserRole) error {
	if !role.Valid() {
		return apperrors.Validation("Invalid role")
	}
	res := p.db.WithContext(ctx).Model(&models.Account{}).
		Where("uid = ? AND (role = '' OR role IS NULL)", uid).
		Update("role", role)
	if res.Error != nil {
		return apperrors.Dependency("Failed to set role claim", res.Error)
	}
	if res.RowsAffected == 0 {
		acc, err := p.GetAccount(ctx, uid)
		if err != nil {
			return err
		}
		if acc.Role != role {
			return apperrors.Conflict("Role claim already set")
		}
	}
	return nil
}

func (p *JWTProvider) DeleteAccount(ctx context.Context, uid string) error {
	if err := p.db.WithContext(ctx).Delete(&models.Account{}, "uid = ?", uid).Error; err != nil {
		return apperrors.Dependency("Failed to delete account", err)
	}
	return nil
}

func (p *JWTProvider) GetAccount(ctx context.Context, uid string) (*models.Account, error) {
	var acc models.Account
	if err := p.db.WithContext(ctx).First(&acc, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Account not found")
		}
		return nil, apperrors.Dependency("Failed to load account", err)
	}
	return &acc, nil
}

func (p *JWTProvider) SignIn(ctx context.Context, email, password string) (string, *models.Account, error) {
	var acc models.Account
	err := p.db.WithContext(ctx).First(&acc, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.Unauthenticated("Invalid email or password")
		}
		return "", nil, apperrors.Dependency("Failed to load account", err)
	}
	if acc.Disabled {
		return "", nil, apperrors.Unauthenticated("Account disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthenticated("Invalid email or password")
	}

	token, err := p.issue(&acc)
	if err != nil {
		return "", nil, apperrors.Dependency("Failed to generate token", err)
	}
	return token, &acc, nil
}

func (p *JWTProvider) issue(acc *models.Account) (string, error) {
	now := p.now()
	claims := Claims{
		UID:   acc.UID,
		Email: acc.Email,
		Role:  acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *JWTProvider) VerifyToken(_ context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, apperrors.Unauthenticated("No token provided")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid || claims.UID == "" {
		return nil, apperrors.Unauthenticated("Invalid or expired token")
	}
	return claims, nil
}
