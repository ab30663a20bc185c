package models

import (
	"bts/src/types"
	"time"
)

// RecurrencePattern describes how a trip template repeats across calendar
// days. It is owned by value inside Trip; Type "none" means the trip runs
// exactly once, on its valid_from day.
type RecurrencePattern struct {
	Type       types.RecurrenceType `gorm:"default:'none'" json:"type,omitempty"`
	Interval   int                  `gorm:"default:1" json:"interval,omitempty"`
	DaysOfWeek types.IntList        `gorm:"type:jsonb" json:"days_of_week,omitempty"`
	EndDate    *time.Time           `json:"end_date,omitempty"`
	Exceptions types.DateList       `gorm:"type:jsonb" json:"exceptions,omitempty"`
}

func (p RecurrencePattern) IsRecurring() bool {
	return p.Type == types.RECURRENCE_DAILY ||
		p.Type == types.RECURRENCE_WEEKLY ||
		p.Type == types.RECURRENCE_MONTHLY
}

type Trip struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	RouteSlug     string     `gorm:"index" json:"route_slug,omitempty"`
	DepartureCity string     `json:"departure_city,omitempty"`
	ArrivalCity   string     `json:"arrival_city,omitempty"`
	DepartureTime string     `json:"departure_time,omitempty"`
	ArrivalTime   string     `json:"arrival_time,omitempty"`
	Price         float32    `json:"price"`
	Currency      string     `gorm:"default:'XAF'" json:"currency,omitempty"`
	BusID         uint       `json:"bus_id,omitempty"`
	AgencyID      uint       `json:"agency_id,omitempty"`
	ValidFrom     time.Time  `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	CreatedBy     uint       `json:"created_by,omitempty"`

	Recurrence RecurrencePattern `gorm:"embedded;embeddedPrefix:recurrence_" json:"recurrence"`

	Bus            Bus             `json:"bus,omitempty"`
	Creator        User            `gorm:"foreignKey:created_by" json:"-"`
	GeneratedTrips []GeneratedTrip `gorm:"foreignKey:trip_id" json:"generated_trips,omitempty"`

	types.Timestamps
}
