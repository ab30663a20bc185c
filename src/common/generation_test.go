package common

import (
	"bts/src/db"
	"bts/src/models"
	"bts/src/types"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gdb.AutoMigrate(
		&models.User{},
		&models.Bus{},
		&models.BusSeat{},
		&models.Trip{},
		&models.GeneratedTrip{},
		&models.GeneratedTripSeat{},
		&models.GenerationRun{},
	))
	db.NewDB(gdb)
	return gdb
}

func seedBus(t *testing.T, gdb *gorm.DB, seatCount int) *models.Bus {
	t.Helper()
	bus := models.Bus{PlateNumber: "LT-204-AB", Model: "Coaster", SeatCapacity: uint(seatCount), IsActive: true}
	for i := 1; i <= seatCount; i++ {
		bus.Seats = append(bus.Seats, models.BusSeat{
			SeatNumber: fmt.Sprintf("%d", i),
			SeatType:   "standard",
			RowNumber:  (i-1)/4 + 1,
			Position:   (i-1)%4 + 1,
		})
	}
	require.NoError(t, gdb.Create(&bus).Error)
	return &bus
}

func seedTrip(t *testing.T, gdb *gorm.DB, busID uint, pattern models.RecurrencePattern, validFrom time.Time, validUntil *time.Time) *models.Trip {
	t.Helper()
	trip := models.Trip{
		RouteSlug:     "douala-yaounde",
		DepartureCity: "Douala",
		ArrivalCity:   "Yaounde",
		DepartureTime: "08:30",
		ArrivalTime:   "12:45",
		Price:         6500,
		BusID:         busID,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		IsActive:      true,
		Recurrence:    pattern,
	}
	require.NoError(t, gdb.Create(&trip).Error)
	return &trip
}

func TestMaterializeBootstrapsSeatInventory(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 40)
	trip := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_NONE, Interval: 1}, day(2024, 6, 1), nil)

	created, id, err := MaterializeTrip(trip, day(2024, 6, 1))
	assert.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, id)

	var generated models.GeneratedTrip
	require.NoError(t, gdb.Preload("Seats").First(&generated, id).Error)
	assert.Equal(t, uint(40), generated.AvailableSeats)
	assert.Equal(t, types.TRIP_SCHEDULED, generated.Status)
	assert.Equal(t, "2024-06-01", generated.ServiceDay)
	assert.Len(t, generated.Seats, 40)
	for _, seat := range generated.Seats {
		assert.Equal(t, types.SEAT_AVAILABLE, seat.Status)
	}
	assert.Equal(t, generated.OriginalDepartureTime, generated.ActualDepartureTime)
	assert.Equal(t, 8, generated.ActualDepartureTime.Hour())
	assert.Equal(t, 12, generated.ActualArrivalTime.Hour())
}

func TestMaterializeIsIdempotentPerDay(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 10)
	trip := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_NONE, Interval: 1}, day(2024, 6, 1), nil)

	created, _, err := MaterializeTrip(trip, day(2024, 6, 1))
	assert.NoError(t, err)
	assert.True(t, created)

	created, _, err = MaterializeTrip(trip, day(2024, 6, 1))
	assert.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMaterializeOvernightArrivalRollsForward(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 4)
	trip := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_NONE, Interval: 1}, day(2024, 6, 1), nil)
	require.NoError(t, gdb.
		Model(&models.Trip{}).
		Where("id = ?", trip.ID).
		Updates(map[string]any{"departure_time": "22:00", "arrival_time": "05:30"}).
		Error)
	trip.DepartureTime = "22:00"
	trip.ArrivalTime = "05:30"

	_, id, err := MaterializeTrip(trip, day(2024, 6, 1))
	require.NoError(t, err)

	var generated models.GeneratedTrip
	require.NoError(t, gdb.First(&generated, id).Error)
	assert.Equal(t, day(2024, 6, 2).Day(), generated.ActualArrivalTime.Day())
	assert.True(t, generated.ActualArrivalTime.After(generated.ActualDepartureTime))
}

func TestGenerateTripsForPeriodIsIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 12)
	seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)

	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 7), 1)
	assert.NoError(t, err)
	assert.Equal(t, 7, created)

	created, err = GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 7), 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, created)

	var count int64
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Count(&count).Error)
	assert.EqualValues(t, 7, count)

	var runs int64
	require.NoError(t, gdb.Model(&models.GenerationRun{}).Count(&runs).Error)
	assert.EqualValues(t, 2, runs)
}

func TestGenerateTripsForPeriodOverlappingWindows(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 12)
	seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)

	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 7), 1)
	assert.NoError(t, err)
	assert.Equal(t, 7, created)

	// shifted horizon only fills in the uncovered tail
	created, err = GenerateTripsForPeriod(day(2024, 6, 5), day(2024, 6, 10), 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, created)

	var count int64
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Count(&count).Error)
	assert.EqualValues(t, 10, count)
}

func TestGenerateTripsForPeriodInvalidRange(t *testing.T) {
	setupTestDB(t)
	_, err := GenerateTripsForPeriod(day(2024, 6, 7), day(2024, 6, 1), 1)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGenerateSkipsTripWithMissingBus(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 8)
	seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)
	orphan := seedTrip(t, gdb, 9999, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)

	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 3), 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, created)

	var orphanCount int64
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Where("trip_id = ?", orphan.ID).Count(&orphanCount).Error)
	assert.EqualValues(t, 0, orphanCount)
}

func TestGenerateBadRecurrenceRuleDoesNotAbortBatch(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 8)
	seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: -1}, day(2024, 6, 1), nil)
	good := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)

	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 3), 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, created)

	var goodCount int64
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Where("trip_id = ?", good.ID).Count(&goodCount).Error)
	assert.EqualValues(t, 3, goodCount)
}

func TestGenerateSkipsExceptionDays(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 8)
	trip := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{
		Type:       types.RECURRENCE_DAILY,
		Interval:   1,
		Exceptions: types.DateList{"2024-06-03"},
	}, day(2024, 6, 1), nil)

	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 5), 1)
	assert.NoError(t, err)
	assert.Equal(t, 4, created)

	var count int64
	require.NoError(t, gdb.
		Model(&models.GeneratedTrip{}).
		Where(&models.GeneratedTrip{TripID: trip.ID, ServiceDay: "2024-06-03"}).
		Count(&count).
		Error)
	assert.EqualValues(t, 0, count)
}

func TestGenerateIgnoresInactiveTrips(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 8)
	trip := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)
	require.NoError(t, gdb.Model(&models.Trip{}).Where("id = ?", trip.ID).Update("is_active", false).Error)

	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 7), 1)
	assert.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestCleanupGeneratedTripsClearsWindowWithSeats(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 6)
	seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)

	_, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 5), 1)
	require.NoError(t, err)

	removed, err := CleanupGeneratedTrips(day(2024, 6, 2), day(2024, 6, 3))
	assert.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	var trips, seats int64
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Count(&trips).Error)
	require.NoError(t, gdb.Model(&models.GeneratedTripSeat{}).Count(&seats).Error)
	assert.EqualValues(t, 3, trips)
	assert.EqualValues(t, 3*6, seats)

	// the cleared days can be generated again
	created, err := GenerateTripsForPeriod(day(2024, 6, 1), day(2024, 6, 5), 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestCleanupExpiredMatchesTerminalStatusesOnly(t *testing.T) {
	gdb := setupTestDB(t)
	bus := seedBus(t, gdb, 6)
	trip := seedTrip(t, gdb, bus.ID, models.RecurrencePattern{Type: types.RECURRENCE_DAILY, Interval: 1}, day(2024, 6, 1), nil)

	old := DateOnly(time.Now()).AddDate(0, 0, -10)
	recent := DateOnly(time.Now()).AddDate(0, 0, -2)
	seed := func(dayTime time.Time, status types.GeneratedTripStatus) uint {
		generated := models.GeneratedTrip{
			TripID:                trip.ID,
			ServiceDay:            dayTime.Format("2006-01-02"),
			OriginalDepartureTime: dayTime,
			ActualDepartureTime:   dayTime,
			ActualArrivalTime:     dayTime.Add(4 * time.Hour),
			Status:                status,
			BusID:                 bus.ID,
		}
		require.NoError(t, gdb.Create(&generated).Error)
		return generated.ID
	}
	oldCancelled := seed(old, types.TRIP_CANCELLED)
	oldArrived := seed(old.AddDate(0, 0, 1), types.TRIP_ARRIVED)
	oldScheduled := seed(old.AddDate(0, 0, 2), types.TRIP_SCHEDULED)
	recentCancelled := seed(recent, types.TRIP_CANCELLED)

	removed, err := CleanupExpiredGeneratedTrips(7)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	var remaining []uint
	require.NoError(t, gdb.Model(&models.GeneratedTrip{}).Pluck("id", &remaining).Error)
	assert.NotContains(t, remaining, oldCancelled)
	assert.NotContains(t, remaining, oldArrived)
	assert.Contains(t, remaining, oldScheduled)
	assert.Contains(t, remaining, recentCancelled)
}
