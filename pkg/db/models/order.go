package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/pkg/enums"
	"github.com/essenza-market/essenza-backend/pkg/types"
)

// Order is an immutable record of a completed purchase. The unique index on
// payment_intent_id guards against duplicate order creation for the same
// payment.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	PaymentIntentID string                `gorm:"column:payment_intent_id;not null;uniqueIndex:orders_payment_intent_key"`
	PaymentStatus   string                `gorm:"column:payment_status;not null"`
	TotalPrice      decimal.Decimal       `gorm:"column:total_price;type:numeric(10,2);not null"`
	IsPaid          bool                  `gorm:"column:is_paid;not null;default:false"`
	PaidAt          *time.Time            `gorm:"column:paid_at"`
	Status          enums.OrderStatus     `gorm:"column:status;not null;default:'processing'"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
