package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &a)
}

// IntList is stored as a jsonb array, e.g. a weekday set [1,3,5].
type IntList []int

func (a IntList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *IntList) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &a)
}

// DateList is stored as a jsonb array of "2006-01-02" calendar days.
type DateList []string

func (a DateList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *DateList) Scan(value any) error {
	b, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &a)
}

func (a DateList) Contains(day string) bool {
	for _, d := range a {
		if d == day {
			return true
		}
	}
	return false
}

func jsonbBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return []byte("null"), nil
	default:
		return nil, errors.New("type assertion to []byte failed")
	}
}

type RecurrenceType string

const (
	RECURRENCE_NONE    RecurrenceType = "none"
	RECURRENCE_DAILY   RecurrenceType = "daily"
	RECURRENCE_WEEKLY  RecurrenceType = "weekly"
	RECURRENCE_MONTHLY RecurrenceType = "monthly"
)

type GeneratedTripStatus string

const (
	TRIP_SCHEDULED GeneratedTripStatus = "scheduled"
	TRIP_BOARDING  GeneratedTripStatus = "boarding"
	TRIP_DEPARTED  GeneratedTripStatus = "departed"
	TRIP_ARRIVED   GeneratedTripStatus = "arrived"
	TRIP_CANCELLED GeneratedTripStatus = "cancelled"
)

type SeatStatus string

const (
	SEAT_AVAILABLE SeatStatus = "available"
	SEAT_RESERVED  SeatStatus = "reserved"
	SEAT_BOOKED    SeatStatus = "booked"
	SEAT_BLOCKED   SeatStatus = "blocked"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RecurrencePatternRequestBody struct {
	Type       string   `json:"type" binding:"required,oneof=none daily weekly monthly"`
	Interval   int      `json:"interval"`
	DaysOfWeek []int    `json:"days_of_week" binding:"omitempty,dive,min=0,max=6"`
	EndDate    *string  `json:"end_date" binding:"omitempty,tripdate"`
	Exceptions []string `json:"exceptions" binding:"omitempty,dive,tripdate"`
}

type CreateTripRequestBody struct {
	DepartureCity string                        `json:"departure_city" binding:"required"`
	ArrivalCity   string                        `json:"arrival_city" binding:"required"`
	DepartureTime string                        `json:"departure_time" binding:"required"`
	ArrivalTime   string                        `json:"arrival_time" binding:"required"`
	Price         float32                       `json:"price" binding:"required,gt=0"`
	Currency      string                        `json:"currency"`
	BusID         uint                          `json:"bus_id" binding:"required"`
	AgencyID      uint                          `json:"agency_id"`
	ValidFrom     string                        `json:"valid_from" binding:"required,tripdate"`
	ValidUntil    *string                       `json:"valid_until" binding:"omitempty,tripdate,gtdate=ValidFrom"`
	Recurrence    *RecurrencePatternRequestBody `json:"recurrence"`
}

type UpdateTripStatusRequestBody struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type GenerateTripsRequestBody struct {
	StartDate  string `json:"start_date" binding:"required,tripdate"`
	EndDate    string `json:"end_date" binding:"required,tripdate,gtdate=StartDate"`
	Regenerate bool   `json:"regenerate"`
}

type GeneratedTripQueryFilters struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Status string `form:"status"`
}
