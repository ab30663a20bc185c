package common

import (
	"bts/src/config"
	"bts/src/db"
	"bts/src/models"
	"bts/src/types"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrMissingBusReference = errors.New("missing bus reference")
)

// MaterializeTrip turns one candidate calendar day into a persisted
// GeneratedTrip plus its seat inventory. Returns created=false when a row for
// (trip, day) already exists, which is what makes overlapping generation
// calls safe to repeat. The generated trip and its seats are written in one
// transaction so a trip with a partial inventory is never observable.
func MaterializeTrip(trip *models.Trip, day time.Time) (bool, uint, error) {
	serviceDay := DateOnly(day).Format(config.DATE_PARSE_FORMAT)
	dbi := db.GetDb()

	var count int64
	err := dbi.
		Model(&models.GeneratedTrip{}).
		Where(&models.GeneratedTrip{TripID: trip.ID, ServiceDay: serviceDay}).
		Count(&count).
		Error
	if err != nil {
		return false, 0, err
	}
	if count > 0 {
		return false, 0, nil
	}

	departure, err := combineDayClock(day, trip.DepartureTime)
	if err != nil {
		return false, 0, fmt.Errorf("trip %d has a malformed departure time %q: %w", trip.ID, trip.DepartureTime, err)
	}
	arrival, err := combineDayClock(day, trip.ArrivalTime)
	if err != nil {
		return false, 0, fmt.Errorf("trip %d has a malformed arrival time %q: %w", trip.ID, trip.ArrivalTime, err)
	}
	if !arrival.After(departure) {
		// overnight route, arrival rolls into the next day
		arrival = arrival.AddDate(0, 0, 1)
	}

	var generated models.GeneratedTrip
	err = dbi.Transaction(func(tx *gorm.DB) error {
		var bus models.Bus
		if err := tx.
			Preload("Seats").
			Where(&models.Bus{ID: trip.BusID}).
			First(&bus).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: trip %d references bus %d", ErrMissingBusReference, trip.ID, trip.BusID)
			}
			return err
		}
		seats := make([]models.GeneratedTripSeat, 0, len(bus.Seats))
		for _, seat := range bus.Seats {
			seats = append(seats, models.GeneratedTripSeat{
				SeatNumber: seat.SeatNumber,
				SeatType:   seat.SeatType,
				Status:     types.SEAT_AVAILABLE,
			})
		}
		capacity := bus.SeatCapacity
		if len(seats) > 0 {
			capacity = uint(len(seats))
		}
		generated = models.GeneratedTrip{
			TripID:                trip.ID,
			ServiceDay:            serviceDay,
			OriginalDepartureTime: departure,
			ActualDepartureTime:   departure,
			ActualArrivalTime:     arrival,
			AvailableSeats:        capacity,
			Status:                types.TRIP_SCHEDULED,
			BusID:                 bus.ID,
			Seats:                 seats,
		}
		if err := tx.Create(&generated).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// lost the insert race against a concurrent run; the row exists
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, generated.ID, nil
}

// GenerateForTrip expands one trip over a window and materializes every
// candidate in ascending order. A failed candidate is logged and skipped; the
// rest of the window is still processed.
func GenerateForTrip(trip *models.Trip, startDate, endDate time.Time) (int, int, error) {
	candidates, err := ExpandTripWindow(trip, startDate, endDate)
	if err != nil {
		return 0, 0, err
	}
	created := 0
	skipped := 0
	for _, day := range candidates {
		ok, _, err := MaterializeTrip(trip, day)
		if err != nil {
			log.Printf("Error materializing trip %d on %s: %s\n", trip.ID, day.Format(config.DATE_PARSE_FORMAT), err.Error())
			skipped++
			continue
		}
		if ok {
			created++
		} else {
			skipped++
		}
	}
	return created, skipped, nil
}

// GenerateTripsForPeriod materializes every active trip whose validity
// intersects [startDate, endDate] and returns the number of generated trips
// newly created. Re-running with an overlapping window creates nothing twice.
// Errors in one trip's expansion never abort the other trips in the batch.
func GenerateTripsForPeriod(startDate, endDate time.Time, userID uint) (int, error) {
	start := DateOnly(startDate)
	end := DateOnly(endDate)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidDateRange, end.Format(config.DATE_PARSE_FORMAT), start.Format(config.DATE_PARSE_FORMAT))
	}

	dbi := db.GetDb()
	var trips []models.Trip
	err := dbi.
		Model(&models.Trip{}).
		Where("is_active = ?", true).
		Where("valid_from < ?", end.AddDate(0, 0, 1)).
		Where("(valid_until IS NULL OR valid_until >= ?)", start).
		Order("id asc").
		Find(&trips).
		Error
	if err != nil {
		return 0, err
	}

	total := 0
	skipped := 0
	for i := range trips {
		trip := &trips[i]
		created, skip, err := GenerateForTrip(trip, start, end)
		if err != nil {
			log.Printf("Error expanding trip %d: %s\n", trip.ID, err.Error())
			skipped++
			continue
		}
		total += created
		skipped += skip
	}
	log.Printf("Generated %d trips for %s - %s (%d candidates skipped)\n", total, start.Format(config.DATE_PARSE_FORMAT), end.Format(config.DATE_PARSE_FORMAT), skipped)

	run := models.GenerationRun{
		ID:          uuid.New(),
		WindowStart: start,
		WindowEnd:   end,
		TriggeredBy: userID,
		Created:     total,
		Skipped:     skipped,
		Status:      "completed",
	}
	if err := dbi.Create(&run).Error; err != nil {
		log.Printf("Error recording generation run: %s\n", err.Error())
	}
	return total, nil
}

// CleanupGeneratedTrips hard-deletes generated trips departing inside
// [startDate, endDate] together with their seat rows. An empty status list
// removes every trip in the range (used before forced regeneration); a
// non-empty list is matched exactly.
func CleanupGeneratedTrips(startDate, endDate time.Time, statuses ...types.GeneratedTripStatus) (int64, error) {
	start := DateOnly(startDate)
	end := DateOnly(endDate)
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %s precedes start date %s", ErrInvalidDateRange, end.Format(config.DATE_PARSE_FORMAT), start.Format(config.DATE_PARSE_FORMAT))
	}
	var removed int64
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		q := tx.
			Model(&models.GeneratedTrip{}).
			Where("actual_departure_time >= ? AND actual_departure_time < ?", start, end.AddDate(0, 0, 1))
		if len(statuses) > 0 {
			q = q.Where("status IN ?", statuses)
		}
		var ids []uint
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return deleteGeneratedTripRows(tx, ids, &removed)
	})
	return removed, err
}

// CleanupExpiredGeneratedTrips removes terminal (arrived or cancelled)
// generated trips whose departure is older than retentionDays. Old trips in
// any other status are left alone.
func CleanupExpiredGeneratedTrips(retentionDays int) (int64, error) {
	cutoff := DateOnly(time.Now()).AddDate(0, 0, -retentionDays)
	var removed int64
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.
			Model(&models.GeneratedTrip{}).
			Where("actual_departure_time < ?", cutoff).
			Where("status IN ?", []types.GeneratedTripStatus{types.TRIP_ARRIVED, types.TRIP_CANCELLED}).
			Pluck("id", &ids).
			Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return deleteGeneratedTripRows(tx, ids, &removed)
	})
	return removed, err
}

func deleteGeneratedTripRows(tx *gorm.DB, ids []uint, removed *int64) error {
	if err := tx.
		Unscoped().
		Where("generated_trip_id IN ?", ids).
		Delete(&models.GeneratedTripSeat{}).
		Error; err != nil {
		return err
	}
	res := tx.
		Unscoped().
		Where("id IN ?", ids).
		Delete(&models.GeneratedTrip{})
	if res.Error != nil {
		return res.Error
	}
	*removed = res.RowsAffected
	return nil
}

func combineDayClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(config.CLOCK_PARSE_FORMAT, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
