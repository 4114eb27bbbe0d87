// Package billingtest builds signed Stripe webhook deliveries and fake
// collaborators for tests.
package billingtest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ManuelReschke/tiersync/app/models"
)

const Secret = "whsec_test_secret"

// EventPayload renders an event envelope around object.
func EventPayload(id, eventType string, object any) []byte {
	body, err := json.Marshal(map[string]any{
		"id":     id,
		"object": "event",
		"type":   eventType,
		"data":   map[string]any{"object": object},
	})
	if err != nil {
		panic(err)
	}
	return body
}

// Subscription renders a subscription object with one line item per product.
func Subscription(customerID string, productIDs ...string) map[string]any {
	items := make([]map[string]any, 0, len(productIDs))
	for _, p := range productIDs {
		items = append(items, map[string]any{
			"object": "subscription_item",
			"price":  map[string]any{"object": "price", "product": p},
		})
	}
	return map[string]any{
		"id":       "sub_test",
		"object":   "subscription",
		"customer": customerID,
		"items":    map[string]any{"object": "list", "data": items},
	}
}

func SubscriptionCreated(customerID string, productIDs ...string) []byte {
	return EventPayload("evt_test", string(stripe.EventTypeCustomerSubscriptionCreated), Subscription(customerID, productIDs...))
}

// Sign returns a valid Stripe-Signature header for payload.
func Sign(payload []byte, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  secret,
	})
	return signed.Header
}

// Customers is an in-memory customer lookup keyed by id.
type Customers struct {
	mu     sync.Mutex
	emails map[string]string
	Err    error
	Calls  int
}

func NewCustomers(emails map[string]string) *Customers {
	return &Customers{emails: emails}
}

func (c *Customers) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}
	email, ok := c.emails[id]
	if !ok {
		return nil, errors.New("no such customer: " + id)
	}
	return &stripe.Customer{ID: id, Email: email}, nil
}

// FailingStore rejects every write with Err.
type FailingStore struct {
	Err error
}

func (f FailingStore) Upsert(ctx context.Context, subscriber *models.Subscriber) error {
	return f.Err
}

func (f FailingStore) Backend() string {
	return "failing"
}
