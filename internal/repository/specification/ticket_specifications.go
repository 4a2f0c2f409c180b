package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByFeatureKey struct {
	FeatureKey string
}

func (s ByFeatureKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature_key = ?", s.FeatureKey)
}

type ActiveTickets struct{}

func (s ActiveTickets) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "active")
}

// NotExpiredAt keeps tickets with no expiry or an expiry in the future.
type NotExpiredAt struct {
	Now time.Time
}

func (s NotExpiredAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("valid_until IS NULL OR valid_until > ?", s.Now)
}
