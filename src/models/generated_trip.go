package models

import (
	"bts/src/types"
	"time"
)

// GeneratedTrip is one concrete, bookable departure materialized from a Trip
// for a specific calendar day. ServiceDay is the "2006-01-02" day of the
// departure; together with TripID it carries the uniqueness guarantee that
// makes repeated generation runs idempotent.
type GeneratedTrip struct {
	ID                    uint                      `gorm:"primarykey" json:"id"`
	TripID                uint                      `gorm:"uniqueIndex:idx_generated_trip_service_day" json:"trip_id,omitempty"`
	ServiceDay            string                    `gorm:"uniqueIndex:idx_generated_trip_service_day" json:"service_day,omitempty"`
	OriginalDepartureTime time.Time                 `json:"original_departure_time,omitempty"`
	ActualDepartureTime   time.Time                 `json:"actual_departure_time,omitempty"`
	ActualArrivalTime     time.Time                 `json:"actual_arrival_time,omitempty"`
	AvailableSeats        uint                      `json:"available_seats"`
	Status                types.GeneratedTripStatus `gorm:"default:'scheduled'" json:"status,omitempty"`
	BusID                 uint                      `json:"bus_id,omitempty"`
	DriverID              *uint                     `json:"driver_id,omitempty"`
	ConductorID           *uint                     `json:"conductor_id,omitempty"`

	Trip  Trip                `json:"trip,omitempty"`
	Seats []GeneratedTripSeat `gorm:"foreignKey:generated_trip_id" json:"seats,omitempty"`

	types.Timestamps
}

// GeneratedTripSeat is one physical seat on one generated trip. Rows are
// created in bulk at materialization and only mutated afterwards by the
// booking subsystem.
type GeneratedTripSeat struct {
	ID              uint             `gorm:"primarykey" json:"id"`
	GeneratedTripID uint             `gorm:"index" json:"generated_trip_id,omitempty"`
	SeatNumber      string           `json:"seat_number,omitempty"`
	SeatType        string           `gorm:"default:'standard'" json:"seat_type,omitempty"`
	Status          types.SeatStatus `gorm:"default:'available'" json:"status,omitempty"`
	BlockedUntil    *time.Time       `json:"blocked_until,omitempty"`

	types.Timestamps
}
