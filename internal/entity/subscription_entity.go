package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type BillingPeriod string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

type SubscriptionPlan struct {
	Id            uuid.UUID
	Name          string
	Slug          string
	Description   string
	Price         float64
	BillingPeriod BillingPeriod

	// Per-period usage limits. 0 = feature disabled, -1 = unlimited.
	PlanGenerationLimit int
	TravelInfoLimit     int

	// Max persisted trip plans, -1 = unlimited
	MaxSavedPlans int

	IsActive  bool
	SortOrder int
}

type UserSubscription struct {
	Id                 uuid.UUID
	UserId             uuid.UUID
	PlanId             uuid.UUID
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
