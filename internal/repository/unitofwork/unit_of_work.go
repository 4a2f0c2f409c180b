package unitofwork

import (
	"context"

	"ai-tripplanner-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubscriptionRepository() contract.SubscriptionRepository
	TicketRepository() contract.TicketRepository
	PlanRepository() contract.PlanRepository
	GuideRepository() contract.GuideRepository
	ReplanEventRepository() contract.ReplanEventRepository
}
