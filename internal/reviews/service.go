package reviews

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/internal/users"
	"github.com/essenza-market/essenza-backend/pkg/db"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
)

const productUserConstraint = "reviews_product_user_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the review service.
type ServiceParams struct {
	ReviewRepo        *Repository
	ProductRepo       *products.Repository
	UserRepo          *users.Repository
	TransactionRunner txRunner
}

// Service exposes business rules for product reviews.
type Service interface {
	AddReview(ctx context.Context, productID, userID uuid.UUID, input CreateReviewInput) (ReviewDTO, error)
	GetProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	AddFeedback(ctx context.Context, reviewID uuid.UUID, helpful bool) (ReviewDTO, error)
	DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error
}

type service struct {
	reviewRepo  *Repository
	productRepo *products.Repository
	userRepo    *users.Repository
	txRunner    txRunner
}

// NewService builds a review service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ReviewRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	return &service{
		reviewRepo:  params.ReviewRepo,
		productRepo: params.ProductRepo,
		userRepo:    params.UserRepo,
		txRunner:    params.TransactionRunner,
	}, nil
}

// AddReview stores the review and recomputes the product's derived rating in
// one transaction. A user may review a product once.
func (s *service) AddReview(ctx context.Context, productID, userID uuid.UUID, input CreateReviewInput) (ReviewDTO, error) {
	if productID == uuid.Nil {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if userID == uuid.Nil {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  user.Name,
		Rating:    input.Rating,
		Comment:   comment,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.reviewRepo.WithTx(tx)
		if err := repo.Create(ctx, review); err != nil {
			return err
		}
		return repo.RecomputeProductRating(ctx, productID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, productUserConstraint) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "you have already reviewed this product")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return FromModel(review), nil
}

// GetProductReviews lists a product's reviews, newest first.
func (s *service) GetProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	items, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return FromModels(items), nil
}

// AddFeedback bumps the helpful or not-helpful counter.
func (s *service) AddFeedback(ctx context.Context, reviewID uuid.UUID, helpful bool) (ReviewDTO, error) {
	if reviewID == uuid.Nil {
		return ReviewDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	review, err := s.reviewRepo.AddFeedback(ctx, reviewID, helpful)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
		}
		return ReviewDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review feedback")
	}
	return FromModel(review), nil
}

// DeleteReview removes the author's own review and recomputes the product
// rating in one transaction.
func (s *service) DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error {
	if reviewID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "review id is required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to delete this review")
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.reviewRepo.WithTx(tx)
		if err := repo.Delete(ctx, reviewID); err != nil {
			return err
		}
		return repo.RecomputeProductRating(ctx, review.ProductID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}
