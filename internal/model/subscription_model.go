package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Slug          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description   string    `gorm:"type:text"`
	Price         float64   `gorm:"type:decimal(10,2);not null"`
	BillingPeriod string    `gorm:"type:varchar(20);not null;default:'monthly'"`
	// Period Usage Limits
	PlanGenerationLimit int `gorm:"default:0"` // 0 = disabled, -1 = unlimited
	TravelInfoLimit     int `gorm:"default:0"` // 0 = disabled, -1 = unlimited
	// Storage Limits
	MaxSavedPlans int `gorm:"default:3"` // -1 = unlimited
	// Display Settings
	IsActive  bool `gorm:"default:true"`
	SortOrder int  `gorm:"default:0"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type UserSubscription struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId             uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanId             uuid.UUID `gorm:"type:uuid;not null;index"`
	Status             string    `gorm:"type:varchar(50);not null"`
	CurrentPeriodStart time.Time `gorm:"not null"`
	CurrentPeriodEnd   time.Time `gorm:"not null"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
