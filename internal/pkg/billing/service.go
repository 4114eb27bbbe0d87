package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/ManuelReschke/tiersync/app/models"
	"github.com/ManuelReschke/tiersync/app/repository"
	"github.com/ManuelReschke/tiersync/internal/pkg/metrics"
)

// Outcome describes what HandleEvent did with a verified event.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeSynced
)

func (o Outcome) String() string {
	if o == OutcomeSynced {
		return metrics.OutcomeSynced
	}
	return metrics.OutcomeIgnored
}

// Service turns verified Stripe events into subscriber tier writes.
type Service struct {
	customers CustomerLookup
	repo      repository.SubscriberRepository
	tiers     TierMap
	log       *zap.Logger
}

// NewService wires the customer lookup, the subscriber store and the tier
// mapping. All three are shared across requests.
func NewService(customers CustomerLookup, repo repository.SubscriberRepository, tiers TierMap, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{customers: customers, repo: repo, tiers: tiers, log: log}
}

// HandleEvent processes one verified event. Only subscription creation
// touches the store; every other type is ignored.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) (Outcome, error) {
	if event.Type != stripe.EventTypeCustomerSubscriptionCreated {
		return OutcomeIgnored, nil
	}
	if event.Data == nil {
		return OutcomeIgnored, fmt.Errorf("%w: event has no data", ErrInvalidSubscription)
	}

	customerID, productID, err := parseSubscription(event.Data.Raw)
	if err != nil {
		return OutcomeIgnored, err
	}

	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("%w: %w", ErrCustomerLookup, err)
	}
	email := ""
	if customer != nil {
		email = strings.TrimSpace(customer.Email)
	}
	if email == "" {
		return OutcomeIgnored, fmt.Errorf("%w: customer %s has no email", ErrCustomerLookup, customerID)
	}

	subscriber := models.NewSubscriber(email, s.tiers.Resolve(productID))

	start := time.Now()
	err = s.repo.Upsert(ctx, subscriber)
	metrics.StoreUpsertDuration.WithLabelValues(s.repo.Backend()).Observe(time.Since(start).Seconds())
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.log.Info("subscriber tier synced",
		zap.String("event_id", event.ID),
		zap.String("customer", customerID),
		zap.String("product", productID),
		zap.String("tier", subscriber.MembershipTier),
	)
	return OutcomeSynced, nil
}

// parseSubscription extracts the customer id and the first line item's
// product id from a subscription object.
func parseSubscription(raw json.RawMessage) (string, string, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidSubscription, err)
	}
	if sub.Customer == nil || sub.Customer.ID == "" {
		return "", "", fmt.Errorf("%w: subscription %s has no customer", ErrInvalidSubscription, sub.ID)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return "", "", fmt.Errorf("%w: subscription %s has no items", ErrInvalidSubscription, sub.ID)
	}
	item := sub.Items.Data[0]
	if item == nil || item.Price == nil || item.Price.Product == nil || item.Price.Product.ID == "" {
		return "", "", fmt.Errorf("%w: subscription %s first item has no product", ErrInvalidSubscription, sub.ID)
	}
	return sub.Customer.ID, item.Price.Product.ID, nil
}
