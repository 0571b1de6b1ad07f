package models

import (
	"time"

	"gorm.io/gorm"
)

// BiometricReading is point-in-time vitals telemetry kept for audit and
// trend display. It never feeds the BAC formula.
type BiometricReading struct {
	gorm.Model
	UserID                 uint      `gorm:"index;not null" json:"user_id"`
	SessionID              *uint     `gorm:"index" json:"session_id,omitempty"`
	RecordedAt             time.Time `json:"recorded_at"`
	HeartRate              *int      `json:"heart_rate,omitempty"`
	BloodPressureSystolic  *int      `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int      `json:"blood_pressure_diastolic,omitempty"`
	TemperatureCelsius     *float64  `json:"temperature_celsius,omitempty"`
	OxygenSaturation       *float64  `json:"oxygen_saturation,omitempty"`
	Source                 string    `gorm:"size:10" json:"source"` // "manual" | "device"
}
