package wishlist

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	products "github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("ESSENZA_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("ESSENZA_TEST_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, tx *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		WishlistRepo: NewRepository(tx),
		ProductRepo:  products.NewRepository(tx),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("wishlist_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Wishlist Tester",
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
		Name:          fmt.Sprintf("Wishlist Test %s", uuid.NewString()[:8]),
		Description:   "test",
		Price:         decimal.NewFromFloat(30),
		OriginalPrice: decimal.NewFromFloat(35),
		Category:      enums.ProductCategoryMen,
		Size:          "100ml",
		Stock:         5,
		Images:        pq.StringArray{"https://img.test/w.jpg"},
		Condition:     enums.ProductConditionNew,
		Concentration: enums.ConcentrationEauDeToilette,
		IsApproved:    true,
		Status:        enums.ListingStatusApproved,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestAddItemRejectsDuplicate(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx)

	if err := svc.AddItem(ctx, user.ID, product.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}

	err := svc.AddItem(ctx, user.ID, product.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate add, got %v", err)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	user := mustCreateUser(t, tx)

	err := svc.AddItem(context.Background(), user.ID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveAndCheckItem(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx)

	if err := svc.AddItem(ctx, user.ID, product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}

	saved, err := svc.CheckItem(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !saved {
		t.Fatal("expected product to be saved")
	}

	if err := svc.RemoveItem(ctx, user.ID, product.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// Idempotent remove.
	if err := svc.RemoveItem(ctx, user.ID, product.ID); err != nil {
		t.Fatalf("redundant remove: %v", err)
	}

	saved, err = svc.CheckItem(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if saved {
		t.Fatal("expected product to be gone")
	}
}

func TestClearWishlist(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	for i := 0; i < 3; i++ {
		product := mustCreateProduct(t, tx)
		if err := svc.AddItem(ctx, user.ID, product.ID); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	if err := svc.Clear(ctx, user.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}

	items, err := svc.GetWishlist(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty wishlist, got %d items", len(items))
	}

	// The wishlist is now empty, so a second clear has nothing to remove.
	err = svc.Clear(ctx, user.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on repeated clear, got %v", err)
	}
}

func TestClearWishlistWithoutItems(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx)
	user := mustCreateUser(t, tx)

	err := svc.Clear(context.Background(), user.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for user with no wishlist, got %v", err)
	}
}
