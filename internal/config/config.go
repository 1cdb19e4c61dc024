package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Remote calendar
	CalendarID  string
	CalendarURL string
	BearerToken string
	Timezone    string
	HorizonDays int

	// Schedule hand-off from the scraper
	SchedulePath string

	// Exclusion rules (YAML file, optional)
	RulesPath string

	// Audit/fallback artifacts (all optional)
	SnapshotPath string
	AuditDBPath  string

	// SFTP upload of the snapshot (optional)
	SFTPHost      string
	SFTPPort      int
	SFTPUser      string
	SFTPPass      string
	SFTPRemoteDir string
}

func Load() Config {
	return Config{
		CalendarID:  os.Getenv("CALENDAR_ID"),
		CalendarURL: getenv("GCAL_BASE_URL", "https://www.googleapis.com/calendar/v3"),
		BearerToken: os.Getenv("GCAL_TOKEN"),
		Timezone:    getenv("TIMEZONE", "Asia/Vladivostok"),
		HorizonDays: getenvInt("HORIZON_DAYS", 180),

		SchedulePath: getenv("SCHEDULE_JSON", "schedule.json"),
		RulesPath:    os.Getenv("EXCLUSIONS_PATH"),

		SnapshotPath: os.Getenv("SNAPSHOT_PATH"),
		AuditDBPath:  os.Getenv("AUDIT_DB"),

		SFTPHost:      os.Getenv("SFTP_HOST"),
		SFTPPort:      getenvInt("SFTP_PORT", 22),
		SFTPUser:      os.Getenv("SFTP_USER"),
		SFTPPass:      os.Getenv("SFTP_PASS"),
		SFTPRemoteDir: getenv("SFTP_REMOTE_DIR", "/"),
	}
}

// Validate catches configuration errors before any remote call is made.
func (c Config) Validate() error {
	if c.CalendarID == "" {
		return fmt.Errorf("config: missing env CALENDAR_ID")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: bad TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.HorizonDays <= 0 {
		return fmt.Errorf("config: HORIZON_DAYS must be positive, got %d", c.HorizonDays)
	}
	return nil
}

// Location resolves the configured time zone. Call Validate first.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
