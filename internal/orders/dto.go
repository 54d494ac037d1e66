package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/types"
)

// OrderItemDTO is the purchase-time snapshot of one line item.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"userId"`
	Items           []OrderItemDTO        `json:"items"`
	ShippingAddress types.ShippingAddress `json:"shippingAddress"`
	PaymentIntentID string                `json:"paymentIntentId"`
	PaymentStatus   string                `json:"paymentStatus"`
	TotalPrice      decimal.Decimal       `json:"totalPrice"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	Status          string                `json:"status"`
	CreatedAt       time.Time             `json:"createdAt"`
}

// FromModel maps the persistence model into its API shape.
func FromModel(o *models.Order) OrderDTO {
	if o == nil {
		return OrderDTO{}
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
		})
	}
	return OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentIntentID: o.PaymentIntentID,
		PaymentStatus:   o.PaymentStatus,
		TotalPrice:      o.TotalPrice,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		Status:          o.Status.String(),
		CreatedAt:       o.CreatedAt,
	}
}

// FromModels maps a slice of orders.
func FromModels(items []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, FromModel(&items[i]))
	}
	return dtos
}
