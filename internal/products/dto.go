package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
)

// ProductDTO is the API representation of a catalog entry.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	LongDescription string          `json:"longDescription"`
	Price           decimal.Decimal `json:"price"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	Category        string          `json:"category"`
	Size            string          `json:"size"`
	Stock           int             `json:"stock"`
	Images          []string        `json:"images"`
	IsNewArrival    bool            `json:"isNewArrival"`
	IsPopular       bool            `json:"isPopular"`
	Rating          float64         `json:"rating"`
	ReviewCount     int             `json:"reviewCount"`
	SellerID        *uuid.UUID      `json:"sellerId,omitempty"`
	SellerName      string          `json:"sellerName,omitempty"`
	Condition       string          `json:"condition"`
	Brand           string          `json:"brand,omitempty"`
	Notes           []string        `json:"notes"`
	Concentration   string          `json:"concentration"`
	ReleaseYear     *int            `json:"releaseYear,omitempty"`
	IsApproved      bool            `json:"isApproved"`
	Status          string          `json:"status"`
	Views           int             `json:"views"`
	SoldCount       int             `json:"soldCount"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FromModel maps the persistence model into its API shape.
func FromModel(p *models.Product) ProductDTO {
	if p == nil {
		return ProductDTO{}
	}
	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		Category:        p.Category.String(),
		Size:            p.Size,
		Stock:           p.Stock,
		Images:          p.Images,
		IsNewArrival:    p.IsNewArrival,
		IsPopular:       p.IsPopular,
		Rating:          p.Rating,
		ReviewCount:     p.ReviewCount,
		SellerID:        p.SellerID,
		SellerName:      p.SellerName,
		Condition:       p.Condition.String(),
		Brand:           p.Brand,
		Notes:           p.Notes,
		Concentration:   p.Concentration.String(),
		ReleaseYear:     p.ReleaseYear,
		IsApproved:      p.IsApproved,
		Status:          p.Status.String(),
		Views:           p.Views,
		SoldCount:       p.SoldCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// FromModels maps a slice of products.
func FromModels(items []models.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, FromModel(&items[i]))
	}
	return dtos
}

// SearchPageDTO matches the paginated search response shape.
type SearchPageDTO struct {
	Products      []ProductDTO `json:"products"`
	TotalPages    int          `json:"totalPages"`
	CurrentPage   int          `json:"currentPage"`
	TotalProducts int64        `json:"totalProducts"`
	SearchQuery   string       `json:"searchQuery"`
}
