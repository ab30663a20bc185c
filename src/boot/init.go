package boot

import (
	"bts/src/common"
	"bts/src/config"
	"bts/src/db"
	"bts/src/lib"
	"bts/src/models"
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

const (
	horizonLockKey = "generation:horizon:lock"
	cleanupLockKey = "generation:cleanup:lock"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Bus{},
		&models.BusSeat{},
		&models.Trip{},
		&models.GeneratedTrip{},
		&models.GeneratedTripSeat{},
		&models.GenerationRun{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// EnsureSystemUser returns the account that scheduler-triggered generation
// runs are attributed to, creating it on first boot.
func EnsureSystemUser() uint {
	db := db.GetDb()
	var user models.User
	err := db.
		Where(&models.User{Email: "scheduler@system.local"}).
		Attrs(&models.User{Name: "Trip Scheduler", Role: "system"}).
		FirstOrCreate(&user).
		Error
	if err != nil {
		log.Printf("Error ensuring system user: %s\n", err.Error())
		return 0
	}
	return user.ID
}

// InitScheduler registers the two periodic tasks: daily horizon extension at
// a fixed local hour and weekly cleanup of stale terminal trips. Neither task
// backfills missed fires; an error inside a task is logged and the next fire
// proceeds independently.
func InitScheduler() {
	systemUserID := EnsureSystemUser()

	_, err := lib.CreateDailyJob(
		"horizon-extension",
		uint(config.GenerationHour()), 0,
		RunHorizonExtension, systemUserID,
	)
	if err != nil {
		log.Printf("Error registering horizon-extension job: %s\n", err.Error())
	}
	_, err = lib.CreateWeeklyJob(
		"stale-trip-cleanup",
		config.CleanupWeekday(),
		uint(config.GenerationHour()), 30,
		RunStaleCleanup,
	)
	if err != nil {
		log.Printf("Error registering stale-trip-cleanup job: %s\n", err.Error())
	}

	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
	sched.Start()
}

// RunHorizonExtension materializes [today, today + horizon] as the system
// user. The redis lock keeps replicas from running the same tick; the unique
// index on generated trips is the authoritative guard either way.
func RunHorizonExtension(systemUserID uint) {
	defer recoverTask("horizon-extension")
	ctx := context.Background()
	if !lib.AcquireRunLock(ctx, horizonLockKey, 30*time.Minute) {
		log.Println("[horizon-extension] Another instance holds the run lock. Skipping")
		return
	}
	defer lib.ReleaseRunLock(ctx, horizonLockKey)

	today := common.DateOnly(time.Now())
	horizon := today.AddDate(0, 0, config.HorizonDays())
	created, err := common.GenerateTripsForPeriod(today, horizon, systemUserID)
	if err != nil {
		log.Printf("[horizon-extension] Error generating trips: %s\n", err.Error())
		return
	}
	log.Printf("[horizon-extension] Created %d generated trips\n", created)
}

func RunStaleCleanup() {
	defer recoverTask("stale-trip-cleanup")
	ctx := context.Background()
	if !lib.AcquireRunLock(ctx, cleanupLockKey, 30*time.Minute) {
		log.Println("[stale-trip-cleanup] Another instance holds the run lock. Skipping")
		return
	}
	defer lib.ReleaseRunLock(ctx, cleanupLockKey)

	removed, err := common.CleanupExpiredGeneratedTrips(config.RetentionDays())
	if err != nil {
		log.Printf("[stale-trip-cleanup] Error removing stale trips: %s\n", err.Error())
		return
	}
	log.Printf("[stale-trip-cleanup] Removed %d stale generated trips\n", removed)
}

func recoverTask(name string) {
	if r := recover(); r != nil {
		log.Printf("[%s] Recovered from panic: %v\n", name, r)
	}
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
