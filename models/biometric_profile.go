package models

import (
	"gorm.io/gorm"
)

// BiometricProfile holds the physical characteristics the BAC estimator
// needs. One row per user, overwritten in place on update.
type BiometricProfile struct {
	gorm.Model
	UserID            uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	WeightKg          float64  `gorm:"not null" json:"weight_kg"`
	HeightCm          float64  `gorm:"not null" json:"height_cm"`
	Gender            string   `gorm:"size:10;not null" json:"gender"` // "male" | "female" | "other"
	BodyFatPercentage *float64 `json:"body_fat_percentage,omitempty"`
}
