package models

import (
	"bts/src/types"
	"time"
)

type User struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role,omitempty"`
	UID           string    `json:"uid,omitempty"`
	AgencyID      uint      `json:"agency_id,omitempty"`
	EmailVerified bool      `json:"email_verified,omitempty"`
	VerifiedAt    time.Time `json:"verified_at,omitempty"`

	Trips []Trip `gorm:"foreignKey:created_by" json:"trips,omitempty"`

	types.Timestamps
}
