package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TripPlan struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Destination string         `gorm:"type:varchar(255);not null"`
	Title       string         `gorm:"type:varchar(255)"`
	Status      string         `gorm:"type:varchar(50);not null;default:'outline'"`
	Request     datatypes.JSON `gorm:"type:jsonb"` // Original generation request
	Outline     datatypes.JSON `gorm:"type:jsonb"`
	Itinerary   datatypes.JSON `gorm:"type:jsonb"`
	ModelName   string         `gorm:"type:varchar(100)"`
	IsPublic    bool           `gorm:"default:false"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (TripPlan) TableName() string {
	return "trip_plans"
}
