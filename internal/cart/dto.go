package cart

import (
	"time"

	"github.com/google/uuid"

	products "github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
)

// CartItemDTO is one line of the user's cart with its resolved product.
type CartItemDTO struct {
	ID        uuid.UUID            `json:"id"`
	ProductID uuid.UUID            `json:"productId"`
	Quantity  int                  `json:"quantity"`
	Product   *products.ProductDTO `json:"product,omitempty"`
	AddedAt   time.Time            `json:"addedAt"`
}

// CartDTO is the API shape of the cart aggregate.
type CartDTO struct {
	UserID uuid.UUID     `json:"userId"`
	Items  []CartItemDTO `json:"items"`
}

func itemFromModel(item *models.CartItem) CartItemDTO {
	dto := CartItemDTO{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.CreatedAt,
	}
	if item.Product != nil {
		product := products.FromModel(item.Product)
		dto.Product = &product
	}
	return dto
}

func cartFromModels(userID uuid.UUID, items []models.CartItem) CartDTO {
	dtos := make([]CartItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, itemFromModel(&items[i]))
	}
	return CartDTO{UserID: userID, Items: dtos}
}
