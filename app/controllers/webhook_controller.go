package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/ManuelReschke/tiersync/internal/pkg/billing"
	"github.com/ManuelReschke/tiersync/internal/pkg/metrics"
)

type EventVerifier interface {
	Verify(payload []byte, header string) (stripe.Event, error)
}

type EventHandler interface {
	HandleEvent(ctx context.Context, event stripe.Event) (billing.Outcome, error)
}

// WebhookController serves the Stripe webhook endpoint.
type WebhookController struct {
	verifier EventVerifier
	handler  EventHandler
	log      *zap.Logger
}

func NewWebhookController(verifier EventVerifier, handler EventHandler, log *zap.Logger) *WebhookController {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookController{verifier: verifier, handler: handler, log: log}
}

// HandleStripeWebhook verifies the delivery against the raw body, then lets
// the billing service act on it. Every failure is mapped by billing.StatusFor.
func (w *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return w.reply(c, "", billing.ErrMethodNotAllowed)
	}

	rawBody := append([]byte(nil), c.BodyRaw()...)
	event, err := w.verifier.Verify(rawBody, c.Get(billing.SignatureHeader))
	if err != nil {
		w.log.Warn("webhook signature rejected", zap.String("ip", c.IP()), zap.Error(err))
		return w.reply(c, "", err)
	}

	outcome, err := w.handler.HandleEvent(c.UserContext(), event)
	if err != nil {
		fields := []zap.Field{zap.String("event_id", event.ID), zap.String("type", string(event.Type)), zap.Error(err)}
		if errors.Is(err, billing.ErrInvalidSubscription) {
			w.log.Warn("webhook payload rejected", fields...)
		} else {
			w.log.Error("webhook processing failed", fields...)
		}
		return w.reply(c, string(event.Type), err)
	}

	metrics.ObserveWebhook(string(event.Type), outcome.String())
	if outcome == billing.OutcomeIgnored {
		w.log.Debug("unhandled event type", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
		return c.Status(fiber.StatusOK).SendString(billing.BodyUnhandledEvent)
	}
	return c.Status(fiber.StatusOK).SendString(billing.BodySuccess)
}

func (w *WebhookController) reply(c *fiber.Ctx, eventType string, err error) error {
	status, body := billing.StatusFor(err)
	outcome := metrics.OutcomeFailed
	if status < fiber.StatusInternalServerError {
		outcome = metrics.OutcomeRejected
	}
	metrics.ObserveWebhook(eventType, outcome)
	if body == "" {
		return c.SendStatus(status)
	}
	return c.Status(status).SendString(body)
}
