package entity

import (
	"time"

	"github.com/google/uuid"
)

// TripRequest is the structured input a traveler submits for generation.
// Immutable once handed to the planner service.
type TripRequest struct {
	Destinations  []string
	Dates         string // Date range or flexible-duration string, e.g. "2026-09-01..2026-09-05" or "3 days"
	Companions    string
	Themes        []string
	Budget        string // Tier ("budget"/"mid"/"luxury") or numeric range
	Pace          string
	FreeText      string
	FixedBookings []FixedBooking
}

// FixedBooking is a pre-existing reservation the plan must respect.
type FixedBooking struct {
	Name        string `json:"name"`
	Day         int    `json:"day"`
	Time        string `json:"time"` // HH:mm
	Location    string `json:"location,omitempty"`
	Cancellable bool   `json:"cancellable"`
}

// DayTitle is one entry of the outline skeleton: a day number and its theme,
// before any activities exist.
type DayTitle struct {
	Day     int    `json:"day"`
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// ModelInfo records which generation model produced an artifact.
type ModelInfo struct {
	Name string `json:"name"`
	Tier string `json:"tier"` // "flash" | "pro"
}

// PlanOutline is the destination-level skeleton produced by one model call.
// Superseded by the full Itinerary once all chunks resolve.
type PlanOutline struct {
	Destination string         `json:"destination"`
	Description string         `json:"description"`
	Days        []DayTitle     `json:"days"`
	Articles    []GuideArticle `json:"articles,omitempty"`
	Model       ModelInfo      `json:"model"`
}

// GeoPoint is an optional geocoded validation of an activity location.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Activity is a single scheduled item inside a DayPlan.
type Activity struct {
	Time        string    `json:"time"` // HH:mm
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    *GeoPoint `json:"location,omitempty"`
	Citation    string    `json:"citation,omitempty"` // Source guide URL
}

// DayPlan is one fully (or partially) resolved day of the itinerary.
// Failed marks days whose owning chunk exhausted its retries; the outline
// title is retained so the client can render a placeholder.
type DayPlan struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
	Failed     bool       `json:"failed,omitempty"`
}

// Itinerary is the final assembled trip plan. Days are always sorted
// ascending by day number and each day number appears exactly once.
type Itinerary struct {
	Id          uuid.UUID    `json:"id"`
	Destination string       `json:"destination"`
	Description string       `json:"description"`
	Days        []DayPlan    `json:"days"`
	References  []ArticleRef `json:"references,omitempty"`
	Model       ModelInfo    `json:"model"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ArticleRef is a citation of a supporting guide article.
type ArticleRef struct {
	Title   string `json:"title"`
	Url     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

type PlanStatus string

const (
	PlanStatusOutline    PlanStatus = "outline"
	PlanStatusGenerating PlanStatus = "generating"
	PlanStatusPartial    PlanStatus = "partial" // Some chunks failed after retries
	PlanStatusComplete   PlanStatus = "complete"
)

// SavedPlan is the persisted aggregate of a generated trip.
type SavedPlan struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Destination string
	Title       string
	Request     TripRequest
	Outline     *PlanOutline
	Itinerary   Itinerary
	Status      PlanStatus
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
