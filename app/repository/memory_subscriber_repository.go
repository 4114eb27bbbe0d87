package repository

import (
	"context"
	"sync"

	"github.com/ManuelReschke/tiersync/app/models"
)

// MemorySubscriberRepository is an in-process store for local runs and tests.
type MemorySubscriberRepository struct {
	mu    sync.RWMutex
	tiers map[string]string
}

func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{tiers: make(map[string]string)}
}

func (r *MemorySubscriberRepository) Upsert(ctx context.Context, subscriber *models.Subscriber) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tiers[subscriber.Email] = subscriber.MembershipTier
	return nil
}

func (r *MemorySubscriberRepository) Backend() string {
	return BackendMemory
}

// Get returns the stored subscriber for email.
func (r *MemorySubscriberRepository) Get(email string) (*models.Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tier, ok := r.tiers[email]
	if !ok {
		return nil, ErrSubscriberNotFound
	}
	return &models.Subscriber{Email: email, MembershipTier: tier}, nil
}

// Count returns the number of stored subscribers.
func (r *MemorySubscriberRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tiers)
}
