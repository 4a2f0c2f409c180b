package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserStatusPending UserStatus = "pending"
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	Role      UserRole
	Status    UserStatus
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Metered feature counters, reset on period rollover by an external
	// scheduler. Mutated only through the quota guard's atomic consume.
	PlanGenerationUsage     int
	PlanGenerationLastReset time.Time
	TravelInfoUsage         int
	TravelInfoLastReset     time.Time

	// Admin override for the plan-generation limit, nil = use plan limit
	PlanGenerationLimitOverride *int
}
