// reconcile runs one reconciliation of the scraped schedule against the
// remote calendar and prints the summary. The scraper hands the schedule
// over as a JSON file (SCHEDULE_JSON, "-" for stdin).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"calsync/internal/audit"
	"calsync/internal/config"
	"calsync/internal/domain"
	"calsync/internal/gcal"
	"calsync/internal/sftpclient"
	"calsync/internal/snapshot"
	"calsync/internal/sync"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	raws, err := loadLessons(cfg.SchedulePath)
	if err != nil {
		log.Fatalf("schedule load error: %v", err)
	}
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatalf("rules load error: %v", err)
	}
	fmt.Printf("loaded %d lessons, %d exclusion rules\n", len(raws), len(rules))

	client := gcal.New(cfg.CalendarURL, cfg.BearerToken)
	eng := sync.NewEngine(client, cfg.Location(), cfg.Timezone, cfg.HorizonDays)

	started := time.Now()
	sum, runErr := eng.Reconcile(ctx, cfg.CalendarID, raws, rules)
	fmt.Printf("reconcile %s: %s\n", cfg.CalendarID, sum)

	if cfg.AuditDBPath != "" {
		recordRun(cfg, started, sum, runErr)
	}
	if runErr == nil && cfg.SnapshotPath != "" {
		writeSnapshot(ctx, cfg, raws, rules, started)
	}

	if runErr != nil {
		if errors.Is(runErr, sync.ErrSyncInFlight) {
			fmt.Println("another run is in flight, nothing to do")
			return
		}
		log.Fatalf("reconcile error: %v", runErr)
	}
}

func loadLessons(path string) ([]domain.RawLesson, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var lessons []domain.RawLesson
	if err := json.Unmarshal(raw, &lessons); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return lessons, nil
}

func recordRun(cfg config.Config, started time.Time, sum sync.Summary, runErr error) {
	store, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		log.Printf("audit open error: %v", err)
		return
	}
	defer store.Close()
	if err := store.Record(context.Background(), cfg.CalendarID, started, time.Now(), sum, runErr); err != nil {
		log.Printf("audit record error: %v", err)
	}
}

func writeSnapshot(ctx context.Context, cfg config.Config, raws []domain.RawLesson, rules []domain.ExclusionRule, takenAt time.Time) {
	desired, _ := sync.BuildDesired(raws, rules, cfg.Location())
	if err := snapshot.Write(cfg.SnapshotPath, cfg.CalendarID, takenAt, desired); err != nil {
		log.Printf("snapshot error: %v", err)
		return
	}
	fmt.Printf("snapshot written: %s (%d lessons)\n", cfg.SnapshotPath, len(desired))

	sftpCfg := sftpclient.Config{
		Host:      cfg.SFTPHost,
		Port:      cfg.SFTPPort,
		User:      cfg.SFTPUser,
		Pass:      cfg.SFTPPass,
		RemoteDir: cfg.SFTPRemoteDir,
	}
	if !sftpCfg.Configured() {
		return
	}
	if err := sftpclient.UploadFile(ctx, sftpCfg, cfg.SnapshotPath); err != nil {
		log.Printf("snapshot upload error: %v", err)
		return
	}
	fmt.Println("snapshot uploaded")
}
