package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
)

// ListFilter narrows the public catalog listing.
type ListFilter struct {
	Category     *enums.ProductCategory
	IsNewArrival bool
	IsPopular    bool
	Search       string
}

// SearchFilter narrows the paginated storefront search. Only approved,
// in-stock products are searchable.
type SearchFilter struct {
	Query    string
	Category *enums.ProductCategory
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     pagination.Page
}

// Repository encapsulates product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository clone bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns catalog products matching the optional filters.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != nil {
		query = query.Where("category = ?", filter.Category.String())
	}
	if filter.IsNewArrival {
		query = query.Where("is_new_arrival = ?", true)
	}
	if filter.IsPopular {
		query = query.Where("is_popular = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var items []models.Product
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListFeatured returns up to limit products carrying the given flag column.
func (r *Repository) ListFeatured(ctx context.Context, column string, limit int) ([]models.Product, error) {
	var items []models.Product
	err := r.db.WithContext(ctx).
		Where(column+" = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Search returns a page of approved, in-stock products plus the total match count.
func (r *Repository) Search(ctx context.Context, filter SearchFilter) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("status = ?", enums.ListingStatusApproved.String()).
		Where("is_approved = ?", true).
		Where("stock > 0")

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where(
			"name ILIKE ? OR description ILIKE ? OR brand ILIKE ? OR EXISTS (SELECT 1 FROM unnest(notes) AS note WHERE note ILIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", filter.Category.String())
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	err := query.
		Order("created_at DESC").
		Limit(filter.Page.Limit).
		Offset(filter.Page.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// IncrementViews bumps the view counter and returns the refreshed product.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// DecrementStock subtracts the ordered quantity and bumps sold_count. It
// refuses to go below zero; zero rows affected means insufficient stock.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"sold_count": gorm.Expr("sold_count + ?", quantity),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
