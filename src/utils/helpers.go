package utils

import (
	"bts/src/common"
	"bts/src/config"
	"bts/src/db"
	"bts/src/models"
	"bts/src/types"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func ParseDate(value string) (time.Time, error) {
	return time.Parse(config.DATE_PARSE_FORMAT, value)
}

func IsProd() bool {
	return config.API_ENV == "production"
}

// CreateNewTrip persists a trip template with its recurrence pattern and
// immediately materializes the first AutoExpandDays of departures. A failed
// initial expansion is logged but does not roll back the trip; the daily
// scheduler run will pick the window up again.
func CreateNewTrip(ctx *gin.Context, params *types.CreateTripRequestBody, creatorId uint) (uint, error) {
	validFrom, err := ParseDate(params.ValidFrom)
	if err != nil {
		log.Printf("Error parsing valid_from: %s\n", err.Error())
		return 0, err
	}
	var validUntil *time.Time
	if params.ValidUntil != nil {
		vu, err := ParseDate(*params.ValidUntil)
		if err != nil {
			log.Printf("Error parsing valid_until: %s\n", err.Error())
			return 0, err
		}
		validUntil = &vu
	}

	recurrence := models.RecurrencePattern{Type: types.RECURRENCE_NONE, Interval: 1}
	if params.Recurrence != nil {
		recurrence.Type = types.RecurrenceType(params.Recurrence.Type)
		recurrence.Interval = params.Recurrence.Interval
		if recurrence.Interval == 0 {
			recurrence.Interval = 1
		}
		recurrence.DaysOfWeek = types.IntList(params.Recurrence.DaysOfWeek)
		recurrence.Exceptions = types.DateList(params.Recurrence.Exceptions)
		if params.Recurrence.EndDate != nil {
			ed, err := ParseDate(*params.Recurrence.EndDate)
			if err != nil {
				log.Printf("Error parsing recurrence end_date: %s\n", err.Error())
				return 0, err
			}
			recurrence.EndDate = &ed
		}
		if recurrence.IsRecurring() && recurrence.Interval < 1 {
			return 0, fmt.Errorf("%w: interval must be >= 1, got %d", common.ErrInvalidRecurrenceRule, recurrence.Interval)
		}
	}

	currency := params.Currency
	if currency == "" {
		currency = "XAF"
	}
	trip := models.Trip{
		RouteSlug:     slug.Make(fmt.Sprintf("%s %s", params.DepartureCity, params.ArrivalCity)),
		DepartureCity: params.DepartureCity,
		ArrivalCity:   params.ArrivalCity,
		DepartureTime: params.DepartureTime,
		ArrivalTime:   params.ArrivalTime,
		Price:         params.Price,
		Currency:      currency,
		BusID:         params.BusID,
		AgencyID:      params.AgencyID,
		ValidFrom:     common.DateOnly(validFrom),
		ValidUntil:    validUntil,
		IsActive:      true,
		CreatedBy:     creatorId,
		Recurrence:    recurrence,
	}
	dbi := db.GetDb()
	err = dbi.Transaction(func(tx *gorm.DB) error {
		var bus models.Bus
		if err := tx.Where(&models.Bus{ID: params.BusID}).First(&bus).Error; err != nil {
			return err
		}
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	expandUntil := common.DateOnly(validFrom).AddDate(0, 0, config.AutoExpandDays())
	created, skipped, err := common.GenerateForTrip(&trip, validFrom, expandUntil)
	if err != nil {
		log.Printf("Error auto-expanding trip %d: %s\n", trip.ID, err.Error())
		return trip.ID, nil
	}
	log.Printf("Auto-expanded trip %d: %d created, %d skipped\n", trip.ID, created, skipped)
	return trip.ID, nil
}
