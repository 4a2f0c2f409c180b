package contract

import (
	"context"

	"ai-tripplanner-be/internal/entity"
	"ai-tripplanner-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *entity.SavedPlan) error
	Update(ctx context.Context, plan *entity.SavedPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SavedPlan, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SavedPlan, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateItinerary stores the assembled itinerary and moves the plan to
	// its terminal status without rewriting the rest of the row.
	UpdateItinerary(ctx context.Context, id uuid.UUID, itinerary *entity.Itinerary, status entity.PlanStatus) error

	// UpdateStatus transitions the lifecycle status only.
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.PlanStatus) error
}
