package models

import (
	"bts/src/types"
	"time"

	"github.com/google/uuid"
)

// GenerationRun records one invocation of the generation service, whether it
// came from the scheduler, the trip-create flow or the admin endpoint.
type GenerationRun struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid" json:"id"`

	WindowStart time.Time `json:"window_start,omitempty"`
	WindowEnd   time.Time `json:"window_end,omitempty"`
	TriggeredBy uint      `json:"triggered_by,omitempty"`
	Created     int       `json:"created"`
	Skipped     int       `json:"skipped"`
	Status      string    `gorm:"default:'completed'" json:"status,omitempty"`
	Error       string    `json:"error,omitempty"`

	types.Timestamps
}
