package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/essenza-market/essenza-backend/internal/orders"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
	"github.com/essenza-market/essenza-backend/pkg/logger"
)

type ServiceParams struct {
	OrderRepo *orders.Repository
	Logger    *logger.Logger
}

// Service reconciles Stripe payment events against stored orders.
type Service struct {
	orderRepo *orders.Repository
	logg      *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{orderRepo: params.OrderRepo, logg: params.Logger}, nil
}

// HandleEvent dispatches a verified Stripe event. Unknown event types are
// acknowledged without action so Stripe stops retrying them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.markPaid(ctx, intent)
	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		s.logg.Warn(s.logg.WithField(ctx, "payment_intent_id", intent.ID), "payment failed")
		return nil
	default:
		return nil
	}
}

// markPaid confirms the order tied to the intent. Orders are created by the
// storefront after confirmation, so the row may not exist yet; that is not an
// error, the createOrder path records the paid state itself.
func (s *Service) markPaid(ctx context.Context, intent *stripe.PaymentIntent) error {
	err := s.orderRepo.MarkPaid(ctx, intent.ID, string(stripe.PaymentIntentStatusSucceeded))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Info(s.logg.WithField(ctx, "payment_intent_id", intent.ID), "payment succeeded before order creation")
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}
	s.logg.Info(s.logg.WithField(ctx, "payment_intent_id", intent.ID), "order marked paid")
	return nil
}

func decodeIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	return &intent, nil
}
