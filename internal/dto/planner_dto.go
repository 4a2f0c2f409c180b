package dto

import (
	"time"

	"ai-tripplanner-be/internal/entity"

	"github.com/google/uuid"
)

// GeneratePlanRequest is the structured trip input for outline generation.
type GeneratePlanRequest struct {
	Destinations  []string              `json:"destinations" validate:"required,min=1,max=5,dive,required"`
	Dates         string                `json:"dates" validate:"required"`
	Companions    string                `json:"companions"`
	Themes        []string              `json:"themes" validate:"max=10"`
	Budget        string                `json:"budget"`
	Pace          string                `json:"pace"`
	FreeText      string                `json:"free_text" validate:"max=2000"`
	FixedBookings []entity.FixedBooking `json:"fixed_bookings" validate:"max=20"`
}

// GeneratePlanResponse is returned by the non-streaming outline endpoint.
type GeneratePlanResponse struct {
	PlanId    uuid.UUID           `json:"plan_id"`
	Outline   *entity.PlanOutline `json:"outline"`
	FromCache bool                `json:"from_cache"`
}

// GenerateItineraryRequest expands a stored outline into the full itinerary.
type GenerateItineraryRequest struct {
	PlanId uuid.UUID `json:"plan_id" validate:"required"`
}

// GenerateItineraryResponse carries the assembled itinerary. Partial results
// are valid: days whose chunk failed keep their outline title with failed=true.
type GenerateItineraryResponse struct {
	PlanId    uuid.UUID         `json:"plan_id"`
	Itinerary *entity.Itinerary `json:"itinerary"`
	Status    string            `json:"status"` // "complete" | "partial"
}

// --- Progress Stream Events (NDJSON) ---

// Progress step identifiers, emitted in pipeline order.
const (
	ProgressStepUsageCheck   = "usage_check"
	ProgressStepCacheCheck   = "cache_check"
	ProgressStepGuideSearch  = "rag_search"
	ProgressStepPromptBuild  = "prompt_build"
	ProgressStepAiGeneration = "ai_generation"
)

// Stream event types. Every stream ends with exactly one terminal event,
// either complete or error.
const (
	StreamEventProgress = "progress"
	StreamEventComplete = "complete"
	StreamEventError    = "error"
)

// StreamEvent is one NDJSON line of the generation stream.
type StreamEvent struct {
	Type      string                     `json:"type"`
	Step      string                     `json:"step,omitempty"`       // progress only
	Message   string                     `json:"message,omitempty"`    // progress and error
	ChunkDone int                        `json:"chunk_done,omitempty"` // progress during ai_generation
	ChunkSize int                        `json:"chunk_total,omitempty"`
	Data      *GenerateItineraryResponse `json:"data,omitempty"` // complete only
}

// --- Saved Plan CRUD ---

type SavePlanRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,max=255"`
}

type SavePlanResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowPlanResponse struct {
	Id          uuid.UUID         `json:"id"`
	Destination string            `json:"destination"`
	Title       string            `json:"title"`
	Status      string            `json:"status"`
	Itinerary   *entity.Itinerary `json:"itinerary,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at"`
}

type ListPlansResponse struct {
	Id          uuid.UUID  `json:"id"`
	Destination string     `json:"destination"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	DayCount    int        `json:"day_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
