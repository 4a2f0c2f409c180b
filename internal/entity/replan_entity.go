package entity

import (
	"time"

	"github.com/google/uuid"
)

type TriggerType string

const (
	TriggerRain    TriggerType = "rain"
	TriggerFatigue TriggerType = "fatigue"
	TriggerDelay   TriggerType = "delay"
)

// ReplanTrigger is the ephemeral signal that the current plan should be
// reconsidered. Created per user action.
type ReplanTrigger struct {
	Type      TriggerType `json:"type"`
	SlotId    string      `json:"slot_id"`
	Day       int         `json:"day"`
	Timestamp time.Time   `json:"timestamp"`
}

type SlotPriority string

const (
	SlotPriorityMust   SlotPriority = "must"
	SlotPriorityShould SlotPriority = "should"
	SlotPriorityNice   SlotPriority = "nice"
)

// PlanSlot wraps an Activity as a schedulable unit for the replan engine.
type PlanSlot struct {
	Id          string       `json:"id"`
	Day         int          `json:"day"`
	SlotIndex   int          `json:"slot_index"`
	Activity    Activity     `json:"activity"`
	StartTime   string       `json:"start_time,omitempty"` // HH:mm
	EndTime     string       `json:"end_time,omitempty"`
	IsSkippable bool         `json:"is_skippable"`
	Priority    SlotPriority `json:"priority"`
}

// TripPlanState is the read-only plan structure handed to the replan engine.
type TripPlanState struct {
	Itinerary Itinerary  `json:"itinerary"`
	Slots     []PlanSlot `json:"slots"`
}

type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "sunny"
	WeatherCloudy WeatherCondition = "cloudy"
	WeatherRainy  WeatherCondition = "rainy"
	WeatherSnowy  WeatherCondition = "snowy"
	WeatherStormy WeatherCondition = "stormy"
)

type WeatherInfo struct {
	Condition          WeatherCondition `json:"condition"`
	TemperatureCelsius float64          `json:"temperature_celsius,omitempty"`
	PrecipitationProb  float64          `json:"precipitation_probability,omitempty"` // 0-1
}

// BookedItem is a reservation the replan must not break.
type BookedItem struct {
	Name        string `json:"name"`
	Time        string `json:"time"` // HH:mm
	Location    string `json:"location,omitempty"`
	Cancellable bool   `json:"cancellable"`
}

// TravelerState is a snapshot of where the traveler currently is in the trip.
type TravelerState struct {
	EstimatedFatigue  float64     `json:"estimated_fatigue"` // 0-1, 1 = limit
	WalkingDistanceKm float64     `json:"walking_distance_km"`
	DelayMinutes      int         `json:"delay_minutes"`
	CurrentTime       string      `json:"current_time"` // HH:mm
	CurrentLocation   *GeoPoint   `json:"current_location,omitempty"`
	TriggerType       TriggerType `json:"trigger_type"`
}

// TripContext is ambient trip information read by scoring.
type TripContext struct {
	City             string       `json:"city"`
	Weather          *WeatherInfo `json:"weather,omitempty"`
	CurrentTime      string       `json:"current_time"` // HH:mm
	Bookings         []BookedItem `json:"bookings"`
	CompanionType    string       `json:"companion_type"`
	ReturnConstraint string       `json:"return_constraint,omitempty"` // e.g. "last train 22:30"
	Budget           string       `json:"budget"`
}

type RecoveryCategory string

const (
	CategoryIndoor  RecoveryCategory = "indoor"
	CategoryOutdoor RecoveryCategory = "outdoor"
	CategoryRest    RecoveryCategory = "rest"
	CategoryFood    RecoveryCategory = "food"
	CategoryCulture RecoveryCategory = "culture"
)

// ScoreBreakdown is the deterministic scoring result for one candidate.
// A hard-constraint violation sets HardPass=false and Total=-1.
type ScoreBreakdown struct {
	HardPass        bool    `json:"hard_pass"`
	Proximity       float64 `json:"proximity"`
	StateFit        float64 `json:"state_fit"`
	TimeFeasibility float64 `json:"time_feasibility"`
	PlanDeviation   float64 `json:"plan_deviation"` // Penalty signal, higher = worse
	Total           float64 `json:"total"`
}

// RecoveryOption is a scored candidate adjustment.
type RecoveryOption struct {
	Id                string           `json:"id"`
	Day               int              `json:"day"`
	ReplacementSlots  []PlanSlot       `json:"replacement_slots"`
	Category          RecoveryCategory `json:"category"`
	Explanation       string           `json:"explanation"`
	EstimatedDuration string           `json:"estimated_duration"` // e.g. "1h30m"
	Score             ScoreBreakdown   `json:"score"`
}

type ReplanOutcome string

const (
	ReplanSucceeded ReplanOutcome = "succeeded"
	ReplanTimedOut  ReplanOutcome = "timed_out"
	ReplanFailed    ReplanOutcome = "failed"
)

// ReplanEvent is the analytics row persisted per replan invocation.
// Timed-out and failed invocations are recorded identically to successes,
// distinguished only by Outcome and Degraded.
type ReplanEvent struct {
	Id               uuid.UUID
	PlanId           uuid.UUID
	UserId           uuid.UUID
	TriggerType      TriggerType
	Outcome          ReplanOutcome
	Degraded         bool
	ProcessingTimeMs int
	PrimaryOptionId  string
	CreatedAt        time.Time
}
