package models

import (
	"time"

	"gorm.io/gorm"
)

// Alert types, lowest to highest severity. limit_reached sits outside the
// BAC severity ladder: it fires on the per-session soft limit instead.
const (
	AlertCaution      = "caution"
	AlertWarning      = "warning"
	AlertLimitReached = "limit_reached"
	AlertDanger       = "danger"
	AlertEmergency    = "emergency"
)

// SobrietyAlert is raised when a BAC threshold is crossed during a session.
// Rows are never deleted; acknowledgment is the only mutation.
type SobrietyAlert struct {
	gorm.Model
	UserID            uint       `gorm:"index;not null" json:"user_id"`
	SessionID         uint       `gorm:"index;not null" json:"session_id"`
	AlertType         string     `gorm:"size:20;not null" json:"alert_type"`
	Message           string     `gorm:"type:text" json:"message"`
	EstimatedBAC      float64    `gorm:"column:estimated_bac" json:"estimated_bac"`
	AcknowledgedAt    *time.Time `json:"acknowledged_at,omitempty"`
	InterventionTaken string     `gorm:"type:text" json:"intervention_taken,omitempty"`
}
