package checkout

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/cart"
	"github.com/essenza-market/essenza-backend/internal/orders"
	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/logger"
	"github.com/essenza-market/essenza-backend/pkg/types"
)

type stubPaymentClient struct {
	created     []*stripe.PaymentIntentParams
	intents     map[string]*stripe.PaymentIntent
	createErr   error
	retrieveErr error
}

func (s *stubPaymentClient) Create(_ context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, params)
	id := fmt.Sprintf("pi_%d", len(s.created))
	intent := &stripe.PaymentIntent{
		ID:           id,
		Amount:       *params.Amount,
		ClientSecret: id + "_secret",
		Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
	}
	if s.intents == nil {
		s.intents = map[string]*stripe.PaymentIntent{}
	}
	s.intents[id] = intent
	return intent, nil
}

func (s *stubPaymentClient) Get(_ context.Context, id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if s.retrieveErr != nil {
		return nil, s.retrieveErr
	}
	intent, ok := s.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment_intent: %s", id)
	}
	return intent, nil
}

func (s *stubPaymentClient) put(intent *stripe.PaymentIntent) {
	if s.intents == nil {
		s.intents = map[string]*stripe.PaymentIntent{}
	}
	s.intents[intent.ID] = intent
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, tx *gorm.DB, payments *stubPaymentClient) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		OrderRepo:         orders.NewRepository(tx),
		ProductRepo:       products.NewRepository(tx),
		CartRepo:          cart.NewRepository(tx),
		PaymentClient:     payments,
		PublishableKey:    "pk_test_essenza",
		TransactionRunner: gormTxRunner{db: tx},
		Logger:            logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard}),
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
		Email:        fmt.Sprintf("checkout_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Buyer",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, price float64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:            uuid.New(),
		Name:          fmt.Sprintf("Checkout Test %s", uuid.NewString()[:8]),
		Description:   "test",
		Price:         decimal.NewFromFloat(price),
		OriginalPrice: decimal.NewFromFloat(price),
		Category:      enums.ProductCategoryUnisex,
		Size:          "50ml",
		Stock:         stock,
		Images:        pq.StringArray{"https://img.test/main.jpg"},
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

func testAddress() types.ShippingAddress {
	return types.ShippingAddress{
		FullName:   "Buyer One",
		Address:    "12 Rue des Parfums",
		City:       "Grasse",
		PostalCode: "06130",
		Country:    "FR",
		Phone:      "+33000000000",
	}
}

func TestCreatePaymentIntentRecomputesTotal(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	payments := &stubPaymentClient{}
	svc := newTestService(t, tx, payments)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx, 20, 5)

	dto, err := svc.CreatePaymentIntent(ctx, user.ID, CreatePaymentIntentInput{
		Items:         []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
		TaxPrice:      decimal.NewFromFloat(1.6),
		ShippingPrice: decimal.NewFromFloat(10),
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	if len(payments.created) != 1 {
		t.Fatalf("expected one intent, got %d", len(payments.created))
	}
	params := payments.created[0]
	if *params.Amount != 3160 {
		t.Fatalf("amount = %d minor units, want 3160", *params.Amount)
	}
	if params.Metadata["userId"] != user.ID.String() {
		t.Fatalf("metadata userId = %q", params.Metadata["userId"])
	}
	if dto.ClientSecret == "" {
		t.Fatalf("missing client secret")
	}
	if !dto.Amount.Equal(decimal.NewFromFloat(31.60)) {
		t.Fatalf("amount = %s, want 31.6", dto.Amount)
	}
}

func TestCreatePaymentIntentUnknownProduct(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx, &stubPaymentClient{})
	user := mustCreateUser(t, tx)

	_, err := svc.CreatePaymentIntent(context.Background(), user.ID, CreatePaymentIntentInput{
		Items: []CheckoutItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	payments := &stubPaymentClient{}
	svc := newTestService(t, tx, payments)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx, 20, 5)
	cartRepo := cart.NewRepository(tx)
	if err := cartRepo.UpsertItem(ctx, user.ID, product.ID, 1); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	payments.put(&stripe.PaymentIntent{
		ID:     "pi_ok",
		Amount: 3160,
		Status: stripe.PaymentIntentStatusSucceeded,
	})

	order, err := svc.CreateOrder(ctx, user.ID, CreateOrderInput{
		PaymentIntentID: "pi_ok",
		Items:           []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if !order.TotalPrice.Equal(decimal.NewFromFloat(31.60)) {
		t.Fatalf("total = %s, want 31.6", order.TotalPrice)
	}
	if !order.IsPaid || order.PaidAt == nil || order.Status != "processing" {
		t.Fatalf("unexpected order state: %+v", order)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.Name != product.Name || item.Image != product.Images[0] || !item.Price.Equal(product.Price) || item.Size != product.Size {
		t.Fatalf("snapshot mismatch: %+v", item)
	}

	var reloaded models.Product
	if err := tx.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 4 || reloaded.SoldCount != 1 {
		t.Fatalf("stock = %d sold = %d, want 4 and 1", reloaded.Stock, reloaded.SoldCount)
	}

	hasItems, err := cartRepo.HasItems(ctx, user.ID)
	if err != nil {
		t.Fatalf("check cart: %v", err)
	}
	if hasItems {
		t.Fatalf("cart should be cleared after order")
	}
}

func TestCreateOrderRejectsUnpaidIntent(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	payments := &stubPaymentClient{}
	svc := newTestService(t, tx, payments)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx, 20, 5)

	payments.put(&stripe.PaymentIntent{
		ID:     "pi_pending",
		Amount: 2000,
		Status: stripe.PaymentIntentStatusRequiresPaymentMethod,
	})

	_, err := svc.CreateOrder(ctx, user.ID, CreateOrderInput{
		PaymentIntentID: "pi_pending",
		Items:           []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePaymentFailed {
		t.Fatalf("expected payment failure, got %v", err)
	}

	var reloaded models.Product
	if err := tx.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("stock must be untouched, got %d", reloaded.Stock)
	}
}

func TestCreateOrderDuplicateIntentConflicts(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	payments := &stubPaymentClient{}
	svc := newTestService(t, tx, payments)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx, 20, 5)

	payments.put(&stripe.PaymentIntent{
		ID:     "pi_dup",
		Amount: 2000,
		Status: stripe.PaymentIntentStatusSucceeded,
	})

	input := CreateOrderInput{
		PaymentIntentID: "pi_dup",
		Items:           []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	}
	if _, err := svc.CreateOrder(ctx, user.ID, input); err != nil {
		t.Fatalf("first order: %v", err)
	}

	_, err := svc.CreateOrder(ctx, user.ID, input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for replayed intent, got %v", err)
	}

	var reloaded models.Product
	if err := tx.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 4 {
		t.Fatalf("replay must not decrement stock again, got %d", reloaded.Stock)
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	payments := &stubPaymentClient{}
	svc := newTestService(t, tx, payments)
	ctx := context.Background()

	user := mustCreateUser(t, tx)
	inStock := mustCreateProduct(t, tx, 20, 5)
	lowStock := mustCreateProduct(t, tx, 30, 1)

	payments.put(&stripe.PaymentIntent{
		ID:     "pi_low",
		Amount: 8000,
		Status: stripe.PaymentIntentStatusSucceeded,
	})

	_, err := svc.CreateOrder(ctx, user.ID, CreateOrderInput{
		PaymentIntentID: "pi_low",
		Items: []CheckoutItemInput{
			{ProductID: inStock.ID, Quantity: 1},
			{ProductID: lowStock.ID, Quantity: 2},
		},
		ShippingAddress: testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	var reloaded models.Product
	if err := tx.First(&reloaded, "id = ?", inStock.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 5 {
		t.Fatalf("first item decrement must roll back, stock = %d", reloaded.Stock)
	}

	var count int64
	if err := tx.Model(&models.Order{}).Where("payment_intent_id = ?", "pi_low").Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("no order row may exist after rollback, got %d", count)
	}
}

func TestGetOrderByIDVisibility(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	payments := &stubPaymentClient{}
	svc := newTestService(t, tx, payments)
	ctx := context.Background()

	owner := mustCreateUser(t, tx)
	stranger := mustCreateUser(t, tx)
	product := mustCreateProduct(t, tx, 20, 5)

	payments.put(&stripe.PaymentIntent{
		ID:     "pi_vis",
		Amount: 2000,
		Status: stripe.PaymentIntentStatusSucceeded,
	})
	order, err := svc.CreateOrder(ctx, owner.ID, CreateOrderInput{
		PaymentIntentID: "pi_vis",
		Items:           []CheckoutItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.GetOrderByID(ctx, order.ID, owner.ID, false); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.GetOrderByID(ctx, order.ID, stranger.ID, true); err != nil {
		t.Fatalf("admin read: %v", err)
	}

	_, err = svc.GetOrderByID(ctx, order.ID, stranger.ID, false)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	_, err = svc.GetOrderByID(ctx, uuid.New(), owner.ID, false)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfigExposesPublishableKey(t *testing.T) {
	db := openTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	svc := newTestService(t, tx, &stubPaymentClient{})
	cfg := svc.Config(context.Background())
	if cfg.PublishableKey != "pk_test_essenza" {
		t.Fatalf("publishable key = %q", cfg.PublishableKey)
	}
}
