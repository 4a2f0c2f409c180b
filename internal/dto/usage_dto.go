// DTOs for usage limits and entitlement status checking
package dto

import (
	"time"

	"github.com/google/uuid"
)

// UsageLimit represents a single limit status
type UsageLimit struct {
	Used     int        `json:"used"`
	Limit    int        `json:"limit"` // -1 = unlimited, 0 = disabled
	CanUse   bool       `json:"can_use"`
	ResetsAt *time.Time `json:"resets_at,omitempty"` // For period limits
}

// TicketBalance summarizes the prepaid pool consulted after the period quota
type TicketBalance struct {
	Remaining   int        `json:"remaining"`
	ActivePacks int        `json:"active_packs"`
	NextExpiry  *time.Time `json:"next_expiry,omitempty"`
}

// PeriodLimits for usage that resets on subscription period rollover
type PeriodLimits struct {
	PlanGeneration UsageLimit `json:"plan_generation"`
	TravelInfo     UsageLimit `json:"travel_info"`
}

// StorageLimits for cumulative resources
type StorageLimits struct {
	SavedPlans UsageLimit `json:"saved_plans"`
}

// UsageStatusResponse is returned by GET /api/usage/v1/status
type UsageStatusResponse struct {
	Plan             PlanInfo      `json:"plan"`
	Period           PeriodLimits  `json:"period"`
	Storage          StorageLimits `json:"storage"`
	Tickets          TicketBalance `json:"tickets"`
	UpgradeAvailable bool          `json:"upgrade_available"`
}

type PlanInfo struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// LimitType constants for error handling
const (
	LimitTypePlanGeneration = "plan_generation"
	LimitTypeTravelInfo     = "travel_info"
	LimitTypeSavedPlans     = "saved_plans"
)

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details. Raised
// only when both the period quota and the ticket pool are exhausted.
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	Remaining  int       `json:"remaining"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "plan generation limit exceeded"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit            int       `json:"limit"`
	Used             int       `json:"used"`
	Remaining        int       `json:"remaining"`
	ResetAfter       time.Time `json:"reset_after"`
	ShowModalPricing bool      `json:"show_modal_pricing"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}
