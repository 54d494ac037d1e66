package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/types"
)

// ProfileDTO is the owner-facing profile shape.
type ProfileDTO struct {
	ID               uuid.UUID         `json:"id"`
	UserID           uuid.UUID         `json:"userId"`
	Bio              string            `json:"bio"`
	Location         string            `json:"location"`
	Website          string            `json:"website"`
	SocialLinks      types.SocialLinks `json:"socialLinks"`
	SellerRating     float64           `json:"sellerRating"`
	TotalSales       int               `json:"totalSales"`
	TotalProducts    int               `json:"totalProducts"`
	IsVerifiedSeller bool              `json:"isVerifiedSeller"`
	ShippingPolicy   string            `json:"shippingPolicy"`
	ReturnPolicy     string            `json:"returnPolicy"`
	Balance          string            `json:"balance"`
	JoinedAt         time.Time         `json:"joinedAt"`
}

// UpdateProfileInput carries a partial profile update. Nil fields stay
// untouched.
type UpdateProfileInput struct {
	Bio            *string            `json:"bio" validate:"omitempty,max=500"`
	Location       *string            `json:"location" validate:"omitempty,max=120"`
	Website        *string            `json:"website" validate:"omitempty,max=200"`
	SocialLinks    *types.SocialLinks `json:"socialLinks"`
	ShippingPolicy *string            `json:"shippingPolicy" validate:"omitempty,max=500"`
	ReturnPolicy   *string            `json:"returnPolicy" validate:"omitempty,max=500"`
}

// SellerDTO is the public seller-page shape, stripped of balance and
// private counters.
type SellerDTO struct {
	UserID           uuid.UUID         `json:"userId"`
	Name             string            `json:"name"`
	Bio              string            `json:"bio"`
	Location         string            `json:"location"`
	Website          string            `json:"website"`
	SocialLinks      types.SocialLinks `json:"socialLinks"`
	SellerRating     float64           `json:"sellerRating"`
	TotalSales       int               `json:"totalSales"`
	IsVerifiedSeller bool              `json:"isVerifiedSeller"`
	ShippingPolicy   string            `json:"shippingPolicy"`
	ReturnPolicy     string            `json:"returnPolicy"`
	JoinedAt         time.Time         `json:"joinedAt"`
}

// SellerProductsPageDTO is the public paginated listing of a seller's
// approved products.
type SellerProductsPageDTO struct {
	Products      []products.ProductDTO `json:"products"`
	TotalPages    int                   `json:"totalPages"`
	CurrentPage   int                   `json:"currentPage"`
	TotalProducts int64                 `json:"totalProducts"`
}

func profileFromModel(p *models.UserProfile) ProfileDTO {
	if p == nil {
		return ProfileDTO{}
	}
	return ProfileDTO{
		ID:               p.ID,
		UserID:           p.UserID,
		Bio:              p.Bio,
		Location:         p.Location,
		Website:          p.Website,
		SocialLinks:      p.SocialLinks,
		SellerRating:     p.SellerRating,
		TotalSales:       p.TotalSales,
		TotalProducts:    p.TotalProducts,
		IsVerifiedSeller: p.IsVerifiedSeller,
		ShippingPolicy:   p.ShippingPolicy,
		ReturnPolicy:     p.ReturnPolicy,
		Balance:          p.Balance.StringFixed(2),
		JoinedAt:         p.JoinedAt,
	}
}

func sellerFromModels(user *models.User, profile *models.UserProfile) SellerDTO {
	dto := SellerDTO{UserID: user.ID, Name: user.Name}
	if profile != nil {
		dto.Bio = profile.Bio
		dto.Location = profile.Location
		dto.Website = profile.Website
		dto.SocialLinks = profile.SocialLinks
		dto.SellerRating = profile.SellerRating
		dto.TotalSales = profile.TotalSales
		dto.IsVerifiedSeller = profile.IsVerifiedSeller
		dto.ShippingPolicy = profile.ShippingPolicy
		dto.ReturnPolicy = profile.ReturnPolicy
		dto.JoinedAt = profile.JoinedAt
	}
	return dto
}
