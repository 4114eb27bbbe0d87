package repository

import (
	"context"

	"github.com/ManuelReschke/tiersync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormSubscriberRepository struct {
	db      *gorm.DB
	backend string
}

// NewSubscriberRepository creates a subscriber repository backed by GORM.
// backend is the dialect name used for metrics labels.
func NewSubscriberRepository(db *gorm.DB, backend string) SubscriberRepository {
	return &gormSubscriberRepository{db: db, backend: backend}
}

func (r *gormSubscriberRepository) Upsert(ctx context.Context, subscriber *models.Subscriber) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"membership_tier"}),
	}).Create(subscriber).Error
}

func (r *gormSubscriberRepository) Backend() string {
	return r.backend
}
