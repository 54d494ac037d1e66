package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/cart"
	"github.com/essenza-market/essenza-backend/internal/orders"
	"github.com/essenza-market/essenza-backend/internal/products"
	"github.com/essenza-market/essenza-backend/pkg/db"
	"github.com/essenza-market/essenza-backend/pkg/db/models"
	"github.com/essenza-market/essenza-backend/pkg/enums"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const paymentIntentConstraint = "orders_payment_intent_key"

// nowUTC is swapped out in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	OrderRepo         *orders.Repository
	ProductRepo       *products.Repository
	CartRepo          *cart.Repository
	PaymentClient     StripePaymentClient
	PublishableKey    string
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service runs the payment and order flow.
type Service interface {
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, input CreatePaymentIntentInput) (PaymentIntentDTO, error)
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (orders.OrderDTO, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error)
	GetOrderByID(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (orders.OrderDTO, error)
	Config(ctx context.Context) ConfigDTO
}

type service struct {
	orderRepo      *orders.Repository
	productRepo    *products.Repository
	cartRepo       *cart.Repository
	paymentClient  StripePaymentClient
	publishableKey string
	txRunner       txRunner
	logg           *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.ProductRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repo is required")
	}
	if params.CartRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repo is required")
	}
	if params.PaymentClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment client is required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		orderRepo:      params.OrderRepo,
		productRepo:    params.ProductRepo,
		cartRepo:       params.CartRepo,
		paymentClient:  params.PaymentClient,
		publishableKey: params.PublishableKey,
		txRunner:       params.TransactionRunner,
		logg:           params.Logger,
	}, nil
}

// CreatePaymentIntent prices the submitted cart from the authoritative
// product rows and opens a Stripe payment for the total.
func (s *service) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, input CreatePaymentIntentInput) (PaymentIntentDTO, error) {
	if userID == uuid.Nil {
		return PaymentIntentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(input.Items) == 0 {
		return PaymentIntentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if input.TaxPrice.IsNegative() || input.ShippingPrice.IsNegative() {
		return PaymentIntentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "tax and shipping cannot be negative")
	}

	itemsPrice := decimal.Zero
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return PaymentIntentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return PaymentIntentDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("product %s not found", item.ProductID))
			}
			return PaymentIntentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		itemsPrice = itemsPrice.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	total := itemsPrice.Add(input.TaxPrice).Add(input.ShippingPrice)
	minorUnits := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minorUnits),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.AddMetadata("userId", userID.String())

	intent, err := s.paymentClient.Create(ctx, params)
	if err != nil {
		return PaymentIntentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}
	return PaymentIntentDTO{
		ClientSecret: intent.ClientSecret,
		Amount:       decimal.NewFromInt(intent.Amount).Div(decimal.NewFromInt(100)),
	}, nil
}

// CreateOrder verifies the payment succeeded, snapshots the purchased
// products, decrements stock and clears the cart, all in one transaction. The
// unique payment-intent index turns a duplicate submission into a Conflict.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.PaymentIntentID == "" {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id is required")
	}
	if len(input.Items) == 0 {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	intent, err := s.paymentClient.Get(ctx, input.PaymentIntentID, nil)
	if err != nil {
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment intent")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodePaymentFailed, fmt.Sprintf("payment not successful (status %s)", intent.Status))
	}

	now := nowUTC()
	order := &models.Order{
		UserID:          userID,
		ShippingAddress: input.ShippingAddress,
		PaymentIntentID: intent.ID,
		PaymentStatus:   string(intent.Status),
		TotalPrice:      decimal.NewFromInt(intent.Amount).Div(decimal.NewFromInt(100)),
		IsPaid:          true,
		PaidAt:          &now,
		Status:          enums.OrderStatusProcessing,
	}

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			product, err := productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("product %s not found", line.ProductID))
				}
				return err
			}

			ok, err := productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("not enough stock for %s", product.Name))
			}

			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Image:     image,
				Price:     product.Price,
				Quantity:  line.Quantity,
				Size:      product.Size,
			})
		}
		order.Items = items

		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.cartRepo.WithTx(tx).Clear(ctx, userID)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return orders.OrderDTO{}, typed
		}
		if db.IsUniqueViolation(err, paymentIntentConstraint) {
			return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an order already exists for this payment")
		}
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":          order.ID.String(),
		"payment_intent_id": order.PaymentIntentID,
	}), "order created")
	return orders.FromModel(order), nil
}

// GetUserOrders returns the caller's orders, newest first.
func (s *service) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders.FromModels(items), nil
}

// GetOrderByID returns one order, visible to its owner and to admins.
func (s *service) GetOrderByID(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (orders.OrderDTO, error) {
	if orderID == uuid.Nil {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return orders.OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID && !isAdmin {
		return orders.OrderDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "not authorized to view this order")
	}
	return orders.FromModel(order), nil
}

// Config exposes the storefront Stripe key.
func (s *service) Config(_ context.Context) ConfigDTO {
	return ConfigDTO{PublishableKey: s.publishableKey}
}
