package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
)

// Repository encapsulates review persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a review repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository clone bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a review. The unique (product, user) index surfaces repeat
// reviews as a constraint violation.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// FindByID loads a review by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByProduct returns the product's reviews, newest first.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var items []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes the review row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Review{}, "id = ?", id).Error
}

// AddFeedback bumps the helpful or not-helpful counter and returns the
// refreshed review.
func (r *Repository) AddFeedback(ctx context.Context, id uuid.UUID, helpful bool) (*models.Review, error) {
	column := "not_helpful"
	if helpful {
		column = "helpful"
	}
	result := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// RecomputeProductRating rewrites the product's derived rating and review
// count from its current reviews.
func (r *Repository) RecomputeProductRating(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`UPDATE products p
SET rating = COALESCE(agg.mean, 0), review_count = COALESCE(agg.cnt, 0)
FROM (SELECT AVG(rating)::numeric(3,2) AS mean, COUNT(*) AS cnt FROM reviews WHERE product_id = ?) agg
WHERE p.id = ?`, productID, productID).
		Error
}
