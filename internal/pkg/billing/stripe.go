package billing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader carries the Stripe v1 HMAC signature and timestamp.
const SignatureHeader = "Stripe-Signature"

// WebhookVerifier authenticates raw webhook bodies against the endpoint's
// signing secret.
type WebhookVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: strings.TrimSpace(secret), tolerance: webhook.DefaultTolerance}
}

// Verify checks the signature header against payload and decodes the event.
// Any failure is reported as ErrSignatureVerification.
func (v *WebhookVerifier) Verify(payload []byte, header string) (stripe.Event, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return stripe.Event{}, fmt.Errorf("%w: %w", ErrSignatureVerification, webhook.ErrNotSigned)
	}
	event, err := webhook.ConstructEventWithOptions(payload, header, v.secret, webhook.ConstructEventOptions{
		Tolerance: v.tolerance,
		// Endpoints pinned to older API versions still deliver the same
		// subscription shape for the fields read here.
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %w", ErrSignatureVerification, err)
	}
	return event, nil
}

// CustomerLookup fetches a Stripe customer by id.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
}

// StripeCustomers reads customers through the Stripe REST API.
type StripeCustomers struct {
	api *client.API
}

// NewStripeCustomers builds a customer client for secretKey. apiURL overrides
// the Stripe API base URL and is empty in production. Network retries are
// disabled; Stripe redelivers the webhook instead.
func NewStripeCustomers(secretKey, apiURL string) *StripeCustomers {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: 10 * time.Second},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if apiURL != "" {
		cfg.URL = stripe.String(strings.TrimRight(apiURL, "/"))
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &StripeCustomers{api: api}
}

func (s *StripeCustomers) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	return s.api.Customers.Get(id, params)
}
