package models

import "strings"

// SubscriberTable is the table (or hash key) holding one row per subscriber email.
const SubscriberTable = "revalidation_email_list"

// Membership tiers known to the default tier mapping.
const (
	TierGold     = "Gold"
	TierPlatinum = "Platinum"
	TierDiamond  = "Diamond"
)

// Subscriber is a subscriber's current membership tier keyed by email.
type Subscriber struct {
	Email          string `gorm:"primaryKey;type:varchar(255)" json:"email"`
	MembershipTier string `gorm:"type:varchar(50);not null" json:"membership_tier"`
}

func (Subscriber) TableName() string {
	return SubscriberTable
}

// NewSubscriber builds a subscriber row, trimming whitespace around the email.
func NewSubscriber(email, tier string) *Subscriber {
	return &Subscriber{
		Email:          strings.TrimSpace(email),
		MembershipTier: strings.TrimSpace(tier),
	}
}
