package contract

import (
	"context"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.GenerationTicket) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationTicket, error)

	// ConsumeOne atomically decrements one unit from the oldest active,
	// unexpired ticket for the feature, flipping its status to exhausted
	// when the decrement reaches zero. Returns false without error when no
	// consumable ticket exists.
	ConsumeOne(ctx context.Context, userId uuid.UUID, feature entity.Feature) (bool, error)

	// TotalRemaining sums remaining_count over active unexpired tickets.
	TotalRemaining(ctx context.Context, userId uuid.UUID, feature entity.Feature) (int, error)

	// ExpireOutdated flips active tickets past their valid_until to expired.
	ExpireOutdated(ctx context.Context, userId uuid.UUID) error
}
