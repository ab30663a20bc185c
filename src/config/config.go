package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=btsdb port=5432 sslmode=disable TimeZone=Africa/Douala"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"
const DATE_PARSE_FORMAT = "2006-01-02"
const CLOCK_PARSE_FORMAT = "15:04"

var API_ENV = os.Getenv("API_ENV")

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// HorizonDays is how far ahead of today the daily scheduler run keeps
// generated trips materialized.
func HorizonDays() int {
	return envInt("GENERATION_HORIZON_DAYS", 7)
}

// AutoExpandDays is the window expanded immediately when a trip is created.
func AutoExpandDays() int {
	return envInt("GENERATION_AUTO_EXPAND_DAYS", 30)
}

// RetentionDays is how long terminal generated trips are kept before the
// weekly cleanup removes them.
func RetentionDays() int {
	return envInt("GENERATION_RETENTION_DAYS", 7)
}

// GenerationHour is the local hour of day the horizon-extension job fires.
func GenerationHour() int {
	return envInt("GENERATION_HOUR", 2)
}

func CleanupWeekday() time.Weekday {
	return time.Weekday(envInt("CLEANUP_WEEKDAY", int(time.Sunday)))
}
