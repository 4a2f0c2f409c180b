// DTOs for the replan endpoint. The wire format is camelCase to match the
// mobile client contract, unlike the rest of the API surface.
package dto

import (
	"ai-tripplanner-be/internal/entity"

	"github.com/google/uuid"
)

// ReplanRequest carries the trigger plus a full snapshot of the trip state.
// The snapshot keeps the endpoint stateless: no plan fetch sits inside the
// latency budget.
type ReplanRequest struct {
	PlanId        uuid.UUID            `json:"planId" validate:"required"`
	Trigger       entity.ReplanTrigger `json:"trigger" validate:"required"`
	TravelerState entity.TravelerState `json:"travelerState" validate:"required"`
	TripContext   entity.TripContext   `json:"tripContext" validate:"required"`
	TripPlan      entity.TripPlanState `json:"tripPlan" validate:"required"`
}

// ReplanResponse is always returned with HTTP 200 inside the budget.
// Degraded marks best-effort results from a timed-out or fallback pass.
type ReplanResponse struct {
	Success          bool                     `json:"success"`
	PrimaryOption    *entity.RecoveryOption   `json:"primaryOption"`
	Alternatives     []*entity.RecoveryOption `json:"alternatives"`
	ScoreBreakdown   *entity.ScoreBreakdown   `json:"scoreBreakdown,omitempty"`
	Explanation      string                   `json:"explanation"`
	Degraded         bool                     `json:"degraded"`
	ProcessingTimeMs int                      `json:"processingTimeMs"`
}
