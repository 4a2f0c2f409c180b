package specification

import (
	"gorm.io/gorm"
)

type ByDestination struct {
	Destination string
}

func (s ByDestination) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("destination = ?", s.Destination)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

type PublicOnly struct{}

func (s PublicOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_public = ?", true)
}
