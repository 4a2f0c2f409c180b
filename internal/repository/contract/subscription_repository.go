package contract

import (
	"context"

	"ai-tripplanner-be/internal/entity"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	// FindActiveByUserId returns the user's active subscription, nil when
	// the user has none (free tier).
	FindActiveByUserId(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error)

	FindPlanById(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error)
	FindPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error)
	FindAllActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error)

	CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	CreateSubscription(ctx context.Context, sub *entity.UserSubscription) error
}
