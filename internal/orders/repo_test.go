package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	"github.com/essenza-market/essenza-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  payment_intent_id TEXT NOT NULL UNIQUE,
  payment_status TEXT NOT NULL,
  total_price NUMERIC NOT NULL,
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  status TEXT NOT NULL DEFAULT 'processing',
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  size TEXT NOT NULL DEFAULT ''
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func buildTestOrder(userID uuid.UUID, paymentIntentID string, createdAt time.Time) *models.Order {
	orderID := uuid.New()
	return &models.Order{
		ID:     orderID,
		UserID: userID,
		Items: []models.OrderItem{
			{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: uuid.New(),
				Name:      "Iris Noir 50ml",
				Price:     decimal.RequireFromString("89.00"),
				Quantity:  1,
				Size:      "50ml",
			},
			{
				ID:        uuid.New(),
				OrderID:   orderID,
				ProductID: uuid.New(),
				Name:      "Vetiver Sauvage 100ml",
				Price:     decimal.RequireFromString("64.50"),
				Quantity:  2,
				Size:      "100ml",
			},
		},
		ShippingAddress: types.ShippingAddress{
			FullName:   "Nora Vale",
			Address:    "12 Rue des Lilas",
			City:       "Lyon",
			PostalCode: "69003",
			Country:    "FR",
			Phone:      "+33600000000",
		},
		PaymentIntentID: paymentIntentID,
		PaymentStatus:   "succeeded",
		TotalPrice:      decimal.RequireFromString("218.00"),
		Status:          enums.OrderStatusProcessing,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestRepositoryCreateAndFindByPaymentIntent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := buildTestOrder(userID, "pi_"+uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByPaymentIntent(ctx, order.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, userID, found.UserID)
	assert.Len(t, found.Items, 2)
	assert.True(t, found.TotalPrice.Equal(order.TotalPrice))
	assert.Equal(t, "Lyon", found.ShippingAddress.City)
}

func TestRepositoryCreateRejectsDuplicatePaymentIntent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	intentID := "pi_" + uuid.NewString()
	first := buildTestOrder(uuid.New(), intentID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, first))

	second := buildTestOrder(uuid.New(), intentID, time.Now().UTC())
	assert.Error(t, repo.Create(ctx, second))
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	older := buildTestOrder(userID, "pi_"+uuid.NewString(), time.Now().UTC().Add(-2*time.Hour))
	newer := buildTestOrder(userID, "pi_"+uuid.NewString(), time.Now().UTC())
	other := buildTestOrder(uuid.New(), "pi_"+uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, other))

	listed, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)
	assert.Equal(t, older.ID, listed[1].ID)
}

func TestRepositoryFindByIDNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
