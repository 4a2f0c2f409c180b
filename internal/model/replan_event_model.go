package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ReplanEvent records every replan invocation for analytics, including
// timed-out and fallback outcomes.
type ReplanEvent struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlanId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	UserId           uuid.UUID      `gorm:"type:uuid;not null;index"`
	TriggerType      string         `gorm:"type:varchar(50);not null"`
	Outcome          string         `gorm:"type:varchar(50);not null;index"`
	Degraded         bool           `gorm:"default:false"`
	ProcessingTimeMs int            `gorm:"not null"`
	PrimaryOptionId  string         `gorm:"type:varchar(100)"`
	ScoreBreakdown   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
}

func (ReplanEvent) TableName() string {
	return "replan_events"
}
