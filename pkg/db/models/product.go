package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/pkg/enums"
)

// Product represents a catalog entry or a seller listing.
type Product struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string                 `gorm:"column:name;not null"`
	Description     string                 `gorm:"column:description;not null"`
	LongDescription string                 `gorm:"column:long_description;not null;default:''"`
	Price           decimal.Decimal        `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice   decimal.Decimal        `gorm:"column:original_price;type:numeric(10,2);not null"`
	Category        enums.ProductCategory  `gorm:"column:category;not null"`
	Size            string                 `gorm:"column:size;not null"`
	Stock           int                    `gorm:"column:stock;not null;default:0"`
	Images          pq.StringArray         `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	IsNewArrival    bool                   `gorm:"column:is_new_arrival;not null;default:false"`
	IsPopular       bool                   `gorm:"column:is_popular;not null;default:false"`
	Rating          float64                `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount     int                    `gorm:"column:review_count;not null;default:0"`
	SellerID        *uuid.UUID             `gorm:"column:seller_id;type:uuid;index:products_seller_id_idx"`
	SellerName      string                 `gorm:"column:seller_name;not null;default:''"`
	Condition       enums.ProductCondition `gorm:"column:condition;not null;default:'New'"`
	Brand           string                 `gorm:"column:brand;not null;default:''"`
	Notes           pq.StringArray         `gorm:"column:notes;type:text[];not null;default:ARRAY[]::text[]"`
	Concentration   enums.Concentration    `gorm:"column:concentration;not null;default:'Eau de Parfum'"`
	ReleaseYear     *int                   `gorm:"column:release_year"`
	IsApproved      bool                   `gorm:"column:is_approved;not null;default:false"`
	Status          enums.ListingStatus    `gorm:"column:status;not null;default:'pending';index:products_status_idx"`
	Views           int                    `gorm:"column:views;not null;default:0"`
	SoldCount       int                    `gorm:"column:sold_count;not null;default:0"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
