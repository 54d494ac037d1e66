package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/internal/users"
	"github.com/essenza-market/essenza-backend/pkg/db"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
)

const userConstraint = "user_profiles_user_key"

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	ProfileRepo *Repository
	UserRepo    *users.Repository
}

// Service exposes seller profile operations, both owner-facing and public.
type Service interface {
	GetMine(ctx context.Context, userID uuid.UUID) (ProfileDTO, error)
	UpdateMine(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (ProfileDTO, error)
	GetSeller(ctx context.Context, sellerID uuid.UUID) (SellerDTO, error)
	GetSellerProducts(ctx context.Context, sellerID uuid.UUID, sort string, page pagination.Page) (SellerProductsPageDTO, error)
}

type service struct {
	profileRepo *Repository
	userRepo    *users.Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{profileRepo: params.ProfileRepo, userRepo: params.UserRepo}, nil
}

// GetMine returns the caller's profile, creating the default row on first
// access.
func (s *service) GetMine(ctx context.Context, userID uuid.UUID) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	profile, err := s.ensureProfile(ctx, userID)
	if err != nil {
		return ProfileDTO{}, err
	}
	return profileFromModel(profile), nil
}

// UpdateMine applies a partial update to the caller's profile.
func (s *service) UpdateMine(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if _, err := s.ensureProfile(ctx, userID); err != nil {
		return ProfileDTO{}, err
	}

	fields := map[string]any{}
	if input.Bio != nil {
		fields["bio"] = *input.Bio
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if input.Website != nil {
		fields["website"] = *input.Website
	}
	if input.SocialLinks != nil {
		fields["social_links"] = *input.SocialLinks
	}
	if input.ShippingPolicy != nil {
		fields["shipping_policy"] = *input.ShippingPolicy
	}
	if input.ReturnPolicy != nil {
		fields["return_policy"] = *input.ReturnPolicy
	}
	if len(fields) > 0 {
		if err := s.profileRepo.UpdateFields(ctx, userID, fields); err != nil {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload profile")
	}
	return profileFromModel(profile), nil
}

// GetSeller returns the public profile for a seller page.
func (s *service) GetSeller(ctx context.Context, sellerID uuid.UUID) (SellerDTO, error) {
	if sellerID == uuid.Nil {
		return SellerDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	user, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SellerDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller not found")
		}
		return SellerDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	profile, err := s.profileRepo.FindByUserID(ctx, sellerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return SellerDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return sellerFromModels(user, profile), nil
}

// GetSellerProducts pages through a seller's approved products for the public
// seller page.
func (s *service) GetSellerProducts(ctx context.Context, sellerID uuid.UUID, sort string, page pagination.Page) (SellerProductsPageDTO, error) {
	if sellerID == uuid.Nil {
		return SellerProductsPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if _, err := s.userRepo.FindByID(ctx, sellerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SellerProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller not found")
		}
		return SellerProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	items, total, err := s.profileRepo.ListSellerProducts(ctx, sellerID, sort, page)
	if err != nil {
		return SellerProductsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller products")
	}
	return SellerProductsPageDTO{
		Products:      products.FromModels(items),
		TotalPages:    pagination.TotalPages(total, page.Limit),
		CurrentPage:   page.Number,
		TotalProducts: total,
	}, nil
}

// ensureProfile loads the user's profile row, creating the default one when
// the user has never touched their profile. A concurrent first access may race
// on the unique index; the loser re-reads.
func (s *service) ensureProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	fresh := &models.UserProfile{UserID: userID}
	if err := s.profileRepo.Create(ctx, fresh); err != nil {
		if db.IsUniqueViolation(err, userConstraint) {
			profile, err = s.profileRepo.FindByUserID(ctx, userID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload profile")
			}
			return profile, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	profile, err = s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload profile")
	}
	return profile, nil
}
