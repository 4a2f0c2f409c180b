package model

import (
	"time"

	"github.com/google/uuid"
)

// GenerationTicket is a prepaid pool of plan generations that is consumed
// only after the period quota is exhausted.
type GenerationTicket struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	FeatureKey     string    `gorm:"type:varchar(100);not null;index"`
	GrantedCount   int       `gorm:"not null"`
	RemainingCount int       `gorm:"not null"`
	Status         string    `gorm:"type:varchar(50);not null;default:'active'"`
	SourceType     string    `gorm:"type:varchar(50);not null"` // ticket_pack, campaign
	ValidUntil     *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (GenerationTicket) TableName() string {
	return "generation_tickets"
}
