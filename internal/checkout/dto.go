package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/pkg/types"
)

// CheckoutItemInput is one cart line submitted at checkout. Prices are never
// read from the client; only id and quantity matter.
type CheckoutItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// CreatePaymentIntentInput starts a Stripe payment for the submitted cart.
type CreatePaymentIntentInput struct {
	Items         []CheckoutItemInput `json:"items" validate:"required,min=1,dive"`
	TaxPrice      decimal.Decimal     `json:"taxPrice"`
	ShippingPrice decimal.Decimal     `json:"shippingPrice"`
}

// PaymentIntentDTO is returned to the storefront to confirm the payment.
type PaymentIntentDTO struct {
	ClientSecret string          `json:"clientSecret"`
	Amount       decimal.Decimal `json:"amount"`
}

// CreateOrderInput finalizes an order after the payment succeeded.
type CreateOrderInput struct {
	PaymentIntentID string                `json:"paymentIntentId" validate:"required"`
	Items           []CheckoutItemInput   `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
}

// ConfigDTO exposes the storefront-side Stripe key.
type ConfigDTO struct {
	PublishableKey string `json:"publishableKey"`
}
