package listings

import (
	"io"

	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/internal/products"
)

const (
	// MaxImages caps the image gallery per listing.
	MaxImages = 5
	// MaxImageBytes caps a single upload; enforced at the HTTP boundary.
	MaxImageBytes = 5 << 20
)

// ImageUpload carries one image file toward the image store.
type ImageUpload struct {
	Name    string
	Content io.Reader
}

// CreateListingInput holds the seller-supplied fields for a new listing.
// Price positivity and image count are enforced by the service; field shape
// by the validator.
type CreateListingInput struct {
	Name            string          `json:"name" validate:"required,max=200"`
	Description     string          `json:"description" validate:"required,max=1000"`
	LongDescription string          `json:"longDescription" validate:"omitempty,max=5000"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	Category        string          `json:"category" validate:"required"`
	Size            string          `json:"size" validate:"required,max=40"`
	Stock           int             `json:"stock" validate:"min=0"`
	Condition       string          `json:"condition" validate:"required"`
	Brand           string          `json:"brand" validate:"omitempty,max=120"`
	Notes           []string        `json:"notes" validate:"max=20,dive,max=60"`
	Concentration   string          `json:"concentration" validate:"required"`
	ReleaseYear     *int            `json:"releaseYear" validate:"omitempty,min=1900,max=2100"`
}

// UpdateListingInput carries a partial listing update. Nil fields stay
// untouched.
type UpdateListingInput struct {
	Name            *string          `json:"name" validate:"omitempty,max=200"`
	Description     *string          `json:"description" validate:"omitempty,max=1000"`
	LongDescription *string          `json:"longDescription" validate:"omitempty,max=5000"`
	Price           *decimal.Decimal `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"originalPrice"`
	Category        *string          `json:"category"`
	Size            *string          `json:"size" validate:"omitempty,max=40"`
	Stock           *int             `json:"stock" validate:"omitempty,min=0"`
	Condition       *string          `json:"condition"`
	Brand           *string          `json:"brand" validate:"omitempty,max=120"`
	Notes           []string         `json:"notes" validate:"omitempty,max=20,dive,max=60"`
	Concentration   *string          `json:"concentration"`
	ReleaseYear     *int             `json:"releaseYear" validate:"omitempty,min=1900,max=2100"`
}

// ListingsPageDTO is the seller's paginated view of their own listings.
type ListingsPageDTO struct {
	Products    []products.ProductDTO `json:"products"`
	TotalPages  int                   `json:"totalPages"`
	CurrentPage int                   `json:"currentPage"`
	Total       int64                 `json:"totalProducts"`
}

// DashboardStatsDTO summarizes a seller's activity.
type DashboardStatsDTO struct {
	TotalListings    int64           `json:"totalListings"`
	ActiveListings   int64           `json:"activeListings"`
	PendingListings  int64           `json:"pendingListings"`
	SoldListings     int64           `json:"soldListings"`
	TotalViews       int64           `json:"totalViews"`
	TotalItemsSold   int64           `json:"totalItemsSold"`
	EstimatedRevenue decimal.Decimal `json:"estimatedRevenue"`
}
