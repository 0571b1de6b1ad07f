package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SessionActive = "active"
	SessionEnded  = "ended" // terminal, a new session must be started
)

// DrinkingSession is one bounded period of monitored drinking at a venue.
// At most one active session exists per user at any time.
type DrinkingSession struct {
	gorm.Model
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	VenueID        string     `gorm:"size:64;index;not null" json:"venue_id"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	Status         string     `gorm:"size:10;index;not null" json:"status"` // "active" | "ended"
	TotalDrinks    int        `json:"total_drinks"`
	TotalAlcoholMl float64    `json:"total_alcohol_ml"`
	EstimatedBAC   float64    `gorm:"column:estimated_bac" json:"estimated_bac"`

	// Alert dedup state: the BAC severity band already notified for, and
	// whether the per-session soft limit alert has fired.
	LastAlertLevel string `gorm:"size:20" json:"-"`
	LimitNotified  bool   `json:"-"`
}
