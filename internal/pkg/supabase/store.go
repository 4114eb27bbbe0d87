package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/ManuelReschke/tiersync/app/models"
	"github.com/ManuelReschke/tiersync/app/repository"
)

const restPath = "/rest/v1"

// Store writes subscribers to a Supabase project through its PostgREST API,
// authenticated with the service role key.
type Store struct {
	client *postgrest.Client
	table  string
}

func NewStore(projectURL, serviceRoleKey string) (*Store, error) {
	base := strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if base == "" {
		return nil, fmt.Errorf("supabase: project url is empty")
	}
	client := postgrest.NewClient(base+restPath, "", map[string]string{
		"apikey":        serviceRoleKey,
		"Authorization": "Bearer " + serviceRoleKey,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("supabase: %w", client.ClientError)
	}
	return &Store{client: client, table: models.SubscriberTable}, nil
}

// Upsert inserts or replaces the row keyed on email.
func (s *Store) Upsert(ctx context.Context, subscriber *models.Subscriber) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(s.table).
		Upsert(subscriber, "email", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("supabase upsert %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) Backend() string {
	return repository.BackendSupabase
}
