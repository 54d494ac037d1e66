package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
)

// Repository persists seller profiles and answers the public seller-page
// queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *Repository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// UpdateFields applies a partial column update to the user's profile row.
func (r *Repository) UpdateFields(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustTotalProducts bumps the listing counter by delta, clamped at zero.
func (r *Repository) AdjustTotalProducts(ctx context.Context, userID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		UpdateColumn("total_products", gorm.Expr("GREATEST(total_products + ?, 0)", delta)).
		Error
}

// sellerSortClause maps an API sort key to an ORDER BY expression.
func sellerSortClause(sort string) string {
	switch sort {
	case "price-low":
		return "price ASC"
	case "price-high":
		return "price DESC"
	case "popular":
		return "views DESC"
	default:
		return "created_at DESC"
	}
}

// ListSellerProducts pages through a seller's publicly visible products.
func (r *Repository) ListSellerProducts(ctx context.Context, sellerID uuid.UUID, sort string, page pagination.Page) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID).
		Where("status = ? AND is_approved", enums.ListingStatusApproved)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	err := base.Session(&gorm.Session{}).
		Order(sellerSortClause(sort)).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&items).
		Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
