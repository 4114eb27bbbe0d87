package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/ManuelReschke/tiersync/app/models"
	"github.com/ManuelReschke/tiersync/app/repository"
	"github.com/ManuelReschke/tiersync/internal/pkg/billing/billingtest"
	"github.com/ManuelReschke/tiersync/internal/pkg/logger"
)

var testTiers = NewTierMap(map[string]string{
	"prod_platinum": models.TierPlatinum,
	"prod_diamond":  models.TierDiamond,
}, models.TierGold)

func verified(t *testing.T, payload []byte) stripe.Event {
	t.Helper()
	event, err := NewWebhookVerifier(billingtest.Secret).Verify(payload, billingtest.Sign(payload, billingtest.Secret))
	require.NoError(t, err)
	return event
}

func newTestService(t *testing.T, customers CustomerLookup, repo repository.SubscriberRepository) *Service {
	return NewService(customers, repo, testTiers, logger.NewTest(t))
}

func TestHandleEvent_MappedProduct(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(map[string]string{"cus_1": "jane@example.com"})
	svc := newTestService(t, customers, repo)

	outcome, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_platinum")))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSynced, outcome)

	got, err := repo.Get("jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.TierPlatinum, got.MembershipTier)
}

func TestHandleEvent_UnmappedProductDefaultsToGold(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(map[string]string{"cus_1": "jane@example.com"})
	svc := newTestService(t, customers, repo)

	_, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_new")))
	require.NoError(t, err)

	got, err := repo.Get("jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.TierGold, got.MembershipTier)
}

func TestHandleEvent_OnlyFirstItemCounts(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(map[string]string{"cus_1": "jane@example.com"})
	svc := newTestService(t, customers, repo)

	_, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_new", "prod_diamond")))
	require.NoError(t, err)

	got, _ := repo.Get("jane@example.com")
	assert.Equal(t, models.TierGold, got.MembershipTier)
}

func TestHandleEvent_LaterEventWins(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(map[string]string{"cus_1": "jane@example.com", "cus_2": " jane@example.com "})
	svc := newTestService(t, customers, repo)

	_, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_platinum")))
	require.NoError(t, err)
	_, err = svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_2", "prod_diamond")))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Count())
	got, _ := repo.Get("jane@example.com")
	assert.Equal(t, models.TierDiamond, got.MembershipTier)
}

func TestHandleEvent_OtherTypeIgnored(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(nil)
	svc := newTestService(t, customers, repo)

	payload := billingtest.EventPayload("evt_2", "invoice.paid", map[string]any{"id": "in_1", "object": "invoice"})
	outcome, err := svc.HandleEvent(context.Background(), verified(t, payload))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Equal(t, 0, repo.Count())
	assert.Equal(t, 0, customers.Calls)
}

func TestHandleEvent_InvalidSubscription(t *testing.T) {
	tests := []struct {
		name   string
		object any
	}{
		{"no items", billingtest.Subscription("cus_1")},
		{"no customer", billingtest.Subscription("", "prod_platinum")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemorySubscriberRepository()
			svc := newTestService(t, billingtest.NewCustomers(map[string]string{"cus_1": "jane@example.com"}), repo)

			payload := billingtest.EventPayload("evt_3", string(stripe.EventTypeCustomerSubscriptionCreated), tt.object)
			_, err := svc.HandleEvent(context.Background(), verified(t, payload))
			assert.ErrorIs(t, err, ErrInvalidSubscription)
			assert.Equal(t, 0, repo.Count())
		})
	}
}

func TestHandleEvent_CustomerLookupFails(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(nil)
	customers.Err = errors.New("stripe unavailable")
	svc := newTestService(t, customers, repo)

	_, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_platinum")))
	assert.ErrorIs(t, err, ErrCustomerLookup)
	assert.Equal(t, 0, repo.Count())
}

func TestHandleEvent_CustomerWithoutEmail(t *testing.T) {
	repo := repository.NewMemorySubscriberRepository()
	customers := billingtest.NewCustomers(map[string]string{"cus_1": ""})
	svc := newTestService(t, customers, repo)

	_, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_platinum")))
	assert.ErrorIs(t, err, ErrCustomerLookup)
	assert.Equal(t, 0, repo.Count())
}

func TestHandleEvent_StoreFailure(t *testing.T) {
	customers := billingtest.NewCustomers(map[string]string{"cus_1": "jane@example.com"})
	svc := newTestService(t, customers, billingtest.FailingStore{Err: errors.New("connection refused")})

	_, err := svc.HandleEvent(context.Background(), verified(t, billingtest.SubscriptionCreated("cus_1", "prod_platinum")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	status, body := StatusFor(err)
	assert.Equal(t, 500, status)
	assert.Equal(t, "Supabase insert error", body)
}
