package entity

import (
	"time"

	"github.com/google/uuid"
)

type Feature string

const (
	FeaturePlanGeneration Feature = "plan_generation"
	FeatureTravelInfo     Feature = "travel_info"
)

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusExhausted TicketStatus = "exhausted"
	TicketStatusExpired   TicketStatus = "expired"
	TicketStatusRevoked   TicketStatus = "revoked"
)

// GenerationTicket is a prepaid entitlement grant consulted after the period
// quota is exhausted. Consuming one decrements RemainingCount and flips
// Status to exhausted at zero.
type GenerationTicket struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	Feature        Feature
	GrantedCount   int
	RemainingCount int
	Status         TicketStatus
	ValidUntil     *time.Time // nil = no expiry
	SourceType     string     // "ticket_pack" | "campaign"
	CreatedAt      time.Time
}
