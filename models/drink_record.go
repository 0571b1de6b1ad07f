package models

import (
	"time"

	"gorm.io/gorm"
)

// DrinkRecord is one consumed drink, append-only, owned by the session it
// was recorded against.
type DrinkRecord struct {
	gorm.Model
	SessionID         uint      `gorm:"index;not null" json:"session_id"`
	UserID            uint      `gorm:"index;not null" json:"user_id"`
	ProductID         string    `gorm:"size:64;not null" json:"product_id"`
	OrderID           string    `gorm:"size:64" json:"order_id,omitempty"`
	VolumeMl          float64   `gorm:"not null" json:"volume_ml"`
	AlcoholContent    float64   `gorm:"not null" json:"alcohol_content"` // ABV as a fraction, 0–1
	AlcoholMl         float64   `gorm:"not null" json:"alcohol_ml"`      // volume_ml * alcohol_content
	ConsumedAt        time.Time `json:"consumed_at"`
	EstimatedBACAfter float64   `gorm:"column:estimated_bac_after" json:"estimated_bac_after"`
}
