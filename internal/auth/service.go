package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/users"
	"github.com/essenza-market/essenza-backend/pkg/auth"
	"github.com/essenza-market/essenza-backend/pkg/config"
	"github.com/essenza-market/essenza-backend/pkg/db"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/security"
)

const emailConstraint = "users_email_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	UserRepo          *users.Repository
	TransactionRunner txRunner
	JWT               config.JWTConfig
	Password          config.PasswordConfig
}

// Service covers account signup, login and self lookup.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (SessionDTO, error)
	Login(ctx context.Context, input LoginInput) (SessionDTO, error)
	Me(ctx context.Context, userID uuid.UUID) (UserDTO, error)
}

type service struct {
	userRepo *users.Repository
	txRunner txRunner
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "jwt secret is required")
	}
	return &service{
		userRepo: params.UserRepo,
		txRunner: params.TransactionRunner,
		jwtCfg:   params.JWT,
		pwCfg:    params.Password,
		now:      time.Now,
	}, nil
}

// Register creates the account together with its empty seller profile and
// signs the first session token.
func (s *service) Register(ctx context.Context, input RegisterInput) (SessionDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.userRepo.WithTx(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return tx.WithContext(ctx).Create(&models.UserProfile{UserID: created.ID}).Error
	})
	if err != nil {
		if db.IsUniqueViolation(err, emailConstraint) {
			return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an account with this email already exists")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	return s.session(user)
}

// Login verifies the credentials and signs a session token. Missing accounts
// and wrong passwords are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, input LoginInput) (SessionDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return SessionDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	loginAt := s.now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, loginAt); err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &loginAt

	return s.session(user)
}

// Me returns the authenticated account.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (UserDTO, error) {
	if userID == uuid.Nil {
		return UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "account not found")
		}
		return UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return userFromModel(user), nil
}

func (s *service) session(user *models.User) (SessionDTO, error) {
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return SessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return SessionDTO{Token: token, User: userFromModel(user)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
