package models

import (
	"bts/src/types"
)

type Bus struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	PlateNumber  string `json:"plate_number,omitempty"`
	Model        string `json:"model,omitempty"`
	SeatCapacity uint   `json:"seat_capacity,omitempty"`
	AgencyID     uint   `json:"agency_id,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	Seats []BusSeat `gorm:"foreignKey:bus_id" json:"seats,omitempty"`

	types.Timestamps
}

// BusSeat is one physical seat in a bus layout. The layout is copied onto
// every generated trip at materialization time, so later layout edits do not
// rewrite inventories that are already on sale.
type BusSeat struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	BusID      uint   `json:"bus_id,omitempty"`
	SeatNumber string `json:"seat_number,omitempty"`
	SeatType   string `gorm:"default:'standard'" json:"seat_type,omitempty"`
	RowNumber  int    `json:"row_number,omitempty"`
	Position   int    `json:"position,omitempty"`

	types.Timestamps
}
