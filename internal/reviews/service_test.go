package reviews

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/internal/users"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, tx *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		ReviewRepo:        NewRepository(tx),
		ProductRepo:       products.NewRepository(tx),
		UserRepo:          users.NewRepository(tx),
		TransactionRunner: gormTxRunner{db: tx},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateUser(t *testing.T, tx *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("review_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         name,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateProduct(t *testing.T, tx *gorm.DB) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		Name:          fmt.Sprintf("Review Test %s", uuid.NewString()[:8]),
		Description:   "test",
		Price:         decimal.NewFromFloat(75),
		OriginalPrice: decimal.NewFromFloat(90),
		Category:      enums.ProductCategoryWomen,
		Size:          "100ml",
		Stock:         3,
		Images:        pq.StringArray{"https://img.test/x.jpg"},
		Condition:     enums.ProductConditionNew,
		Concentration: enums.ConcentrationEauDeParfum,
		IsApproved:    true,
		Status:        enums.ListingStatusApproved,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func productRating(t *testing.T, tx *gorm.DB, id uuid.UUID) (float64, int) {
	t.Helper()
	var product models.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return product.Rating, product.ReviewCount
}

func TestAddReviewRecomputesRating(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	product := mustCreateProduct(t, tx)
	alice := mustCreateUser(t, tx, "Alice")
	bob := mustCreateUser(t, tx, "Bob")

	review, err := svc.AddReview(ctx, product.ID, alice.ID, CreateReviewInput{Rating: 5, Comment: "Gorgeous sillage"})
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if review.UserName != "Alice" || review.Rating != 5 {
		t.Fatalf("unexpected review: %+v", review)
	}

	if _, err := svc.AddReview(ctx, product.ID, bob.ID, CreateReviewInput{Rating: 2, Comment: "Too sweet for me"}); err != nil {
		t.Fatalf("second review: %v", err)
	}

	rating, count := productRating(t, tx, product.ID)
	if rating != 3.5 || count != 2 {
		t.Fatalf("rating = %v, count = %d, want 3.5 and 2", rating, count)
	}
}

func TestAddReviewDuplicateConflicts(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	product := mustCreateProduct(t, tx)
	user := mustCreateUser(t, tx, "Alice")

	if _, err := svc.AddReview(ctx, product.ID, user.ID, CreateReviewInput{Rating: 4, Comment: "Lovely"}); err != nil {
		t.Fatalf("first review: %v", err)
	}

	_, err := svc.AddReview(ctx, product.ID, user.ID, CreateReviewInput{Rating: 1, Comment: "Changed my mind"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestAddReviewValidation(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	product := mustCreateProduct(t, tx)
	user := mustCreateUser(t, tx, "Alice")

	cases := []struct {
		name  string
		input CreateReviewInput
	}{
		{"rating too low", CreateReviewInput{Rating: 0, Comment: "x"}},
		{"rating too high", CreateReviewInput{Rating: 6, Comment: "x"}},
		{"blank comment", CreateReviewInput{Rating: 3, Comment: "   "}},
	}
	for _, tc := range cases {
		_, err := svc.AddReview(ctx, product.ID, user.ID, tc.input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	_, err := svc.AddReview(ctx, uuid.New(), user.ID, CreateReviewInput{Rating: 3, Comment: "x"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestDeleteReviewAuthorOnly(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	product := mustCreateProduct(t, tx)
	author := mustCreateUser(t, tx, "Alice")
	other := mustCreateUser(t, tx, "Bob")

	review, err := svc.AddReview(ctx, product.ID, author.ID, CreateReviewInput{Rating: 4, Comment: "Nice"})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}

	err = svc.DeleteReview(ctx, review.ID, other.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-author, got %v", err)
	}

	if err := svc.DeleteReview(ctx, review.ID, author.ID); err != nil {
		t.Fatalf("delete by author: %v", err)
	}

	rating, count := productRating(t, tx, product.ID)
	if rating != 0 || count != 0 {
		t.Fatalf("rating = %v, count = %d after delete, want zeros", rating, count)
	}

	err = svc.DeleteReview(ctx, review.ID, author.ID)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAddFeedbackCounters(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	product := mustCreateProduct(t, tx)
	user := mustCreateUser(t, tx, "Alice")

	review, err := svc.AddReview(ctx, product.ID, user.ID, CreateReviewInput{Rating: 4, Comment: "Nice"})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}

	updated, err := svc.AddFeedback(ctx, review.ID, true)
	if err != nil {
		t.Fatalf("helpful feedback: %v", err)
	}
	if updated.Helpful != 1 || updated.NotHelpful != 0 {
		t.Fatalf("counters after helpful: %+v", updated)
	}

	updated, err = svc.AddFeedback(ctx, review.ID, false)
	if err != nil {
		t.Fatalf("not-helpful feedback: %v", err)
	}
	if updated.Helpful != 1 || updated.NotHelpful != 1 {
		t.Fatalf("counters after not-helpful: %+v", updated)
	}

	_, err = svc.AddFeedback(ctx, uuid.New(), true)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown review, got %v", err)
	}
}

func TestGetProductReviewsOrdering(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	product := mustCreateProduct(t, tx)
	alice := mustCreateUser(t, tx, "Alice")
	bob := mustCreateUser(t, tx, "Bob")

	if _, err := svc.AddReview(ctx, product.ID, alice.ID, CreateReviewInput{Rating: 5, Comment: "First"}); err != nil {
		t.Fatalf("first review: %v", err)
	}
	if _, err := svc.AddReview(ctx, product.ID, bob.ID, CreateReviewInput{Rating: 3, Comment: "Second"}); err != nil {
		t.Fatalf("second review: %v", err)
	}

	list, err := svc.GetProductReviews(ctx, product.ID)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(list))
	}

	_, err = svc.GetProductReviews(ctx, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}
