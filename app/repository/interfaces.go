package repository

import (
	"context"
	"errors"

	"github.com/ManuelReschke/tiersync/app/models"
)

// Subscriber store backends.
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// ErrSubscriberNotFound is returned by lookups for an email with no record.
var ErrSubscriberNotFound = errors.New("subscriber not found")

// SubscriberRepository writes subscriber tiers keyed on email. Upsert must be
// a single atomic insert-or-update so concurrent writers never produce two
// rows for the same email.
type SubscriberRepository interface {
	Upsert(ctx context.Context, subscriber *models.Subscriber) error
	Backend() string
}
