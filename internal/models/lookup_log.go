package models

import (
	"time"
)

// LookupLog records the outcome of one tracker lookup. Invoices themselves
// are never stored.
type LookupLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	RequestID      string    `json:"request_id" gorm:"type:varchar(36);index"`
	OrderCode      string    `json:"order_code" gorm:"not null;index"`
	Outcome        string    `json:"outcome" gorm:"not null"` // found, not_found, error
	PricingOutcome string    `json:"pricing_outcome"`         // none, ready, unresolved, unavailable
	PackageID      string    `json:"package_id"`
	Forced         bool      `json:"forced" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
}
