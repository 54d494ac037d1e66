package listings

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	"github.com/essenza-market/essenza-backend/pkg/pagination"
)

// Repository persists seller listings. All reads are owner-scoped; the public
// catalog goes through the products repository instead.
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

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindOwned loads a listing only when it belongs to the seller. The caller
// distinguishes missing from foreign rows via FindByID.
func (r *Repository) FindOwned(ctx context.Context, id, sellerID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		First(&product, "id = ? AND seller_id = ?", id, sellerID).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateFields applies a partial column update to a listing row.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// ListBySeller pages through a seller's own listings, optionally filtered by
// status, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status *enums.ListingStatus, page pagination.Page) ([]models.Product, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("seller_id = ?", sellerID)
	if status != nil {
		base = base.Where("status = ?", *status)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&items).
		Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type dashboardRow struct {
	TotalListings    int64
	ActiveListings   int64
	PendingListings  int64
	SoldListings     int64
	TotalViews       int64
	TotalItemsSold   int64
	EstimatedRevenue decimal.Decimal
}

// DashboardStats aggregates a seller's listing activity in one query.
func (r *Repository) DashboardStats(ctx context.Context, sellerID uuid.UUID) (*dashboardRow, error) {
	var row dashboardRow
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select(`COUNT(*) AS total_listings,
COUNT(*) FILTER (WHERE status = ?) AS active_listings,
COUNT(*) FILTER (WHERE status = ?) AS pending_listings,
COUNT(*) FILTER (WHERE status = ?) AS sold_listings,
COALESCE(SUM(views), 0) AS total_views,
COALESCE(SUM(sold_count), 0) AS total_items_sold,
COALESCE(SUM(price * sold_count), 0) AS estimated_revenue`,
			enums.ListingStatusApproved, enums.ListingStatusPending, enums.ListingStatusSold).
		Where("seller_id = ?", sellerID).
		Scan(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
