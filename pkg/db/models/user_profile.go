package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/pkg/types"
)

// UserProfile holds seller-facing profile data, one row per user.
type UserProfile struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex:user_profiles_user_key"`
	Bio              string            `gorm:"column:bio;not null;default:''"`
	Location         string            `gorm:"column:location;not null;default:''"`
	Website          string            `gorm:"column:website;not null;default:''"`
	SocialLinks      types.SocialLinks `gorm:"column:social_links;type:jsonb;not null;default:'{}'"`
	SellerRating     float64           `gorm:"column:seller_rating;type:numeric(3,2);not null;default:0"`
	TotalSales       int               `gorm:"column:total_sales;not null;default:0"`
	TotalProducts    int               `gorm:"column:total_products;not null;default:0"`
	IsVerifiedSeller bool              `gorm:"column:is_verified_seller;not null;default:false"`
	ShippingPolicy   string            `gorm:"column:shipping_policy;not null;default:'Standard shipping within 2-3 business days'"`
	ReturnPolicy     string            `gorm:"column:return_policy;not null;default:'30-day return policy'"`
	Balance          decimal.Decimal   `gorm:"column:balance;type:numeric(10,2);not null;default:0"`
	JoinedAt         time.Time         `gorm:"column:joined_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
