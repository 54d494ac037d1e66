package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
)

// ReviewDTO is the API representation of a product review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"productId"`
	UserID     uuid.UUID `json:"userId"`
	UserName   string    `json:"userName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Helpful    int       `json:"helpful"`
	NotHelpful int       `json:"notHelpful"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateReviewInput captures the fields a reviewer supplies.
type CreateReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// FeedbackInput marks a review as helpful or not helpful.
type FeedbackInput struct {
	IsHelpful bool `json:"isHelpful"`
}

// FromModel maps the persistence model into its API shape.
func FromModel(r *models.Review) ReviewDTO {
	if r == nil {
		return ReviewDTO{}
	}
	return ReviewDTO{
		ID:         r.ID,
		ProductID:  r.ProductID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Helpful:    r.Helpful,
		NotHelpful: r.NotHelpful,
		CreatedAt:  r.CreatedAt,
	}
}

// FromModels maps a slice of reviews.
func FromModels(items []models.Review) []ReviewDTO {
	dtos := make([]ReviewDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, FromModel(&items[i]))
	}
	return dtos
}
