// reconciled runs reconciliation on a cron schedule (SYNC_CRON, default
// every day at 09:00 local time) until interrupted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"calsync/internal/audit"
	"calsync/internal/config"
	"calsync/internal/domain"
	"calsync/internal/gcal"
	"calsync/internal/sync"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	spec := os.Getenv("SYNC_CRON")
	if spec == "" {
		spec = "0 9 * * *"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := gcal.New(cfg.CalendarURL, cfg.BearerToken)
	eng := sync.NewEngine(client, cfg.Location(), cfg.Timezone, cfg.HorizonDays)

	c := cron.New(cron.WithLocation(cfg.Location()))
	if _, err := c.AddFunc(spec, func() { runOnce(ctx, cfg, eng) }); err != nil {
		log.Fatalf("bad SYNC_CRON %q: %v", spec, err)
	}
	c.Start()
	log.Printf("reconciled started, schedule %q (%s)", spec, cfg.Timezone)

	// One run at startup so a freshly deployed daemon does not wait for
	// the next tick.
	runOnce(ctx, cfg, eng)

	<-ctx.Done()
	log.Println("shutting down")
	<-c.Stop().Done()
}

func runOnce(ctx context.Context, cfg config.Config, eng *sync.Engine) {
	if ctx.Err() != nil {
		return
	}
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	raws, err := loadLessons(cfg.SchedulePath)
	if err != nil {
		log.Printf("schedule load error: %v", err)
		return
	}
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Printf("rules load error: %v", err)
		return
	}

	started := time.Now()
	sum, runErr := eng.Reconcile(runCtx, cfg.CalendarID, raws, rules)
	switch {
	case errors.Is(runErr, sync.ErrSyncInFlight):
		log.Printf("reconcile %s: previous run still in flight, skipped", cfg.CalendarID)
		return
	case runErr != nil:
		log.Printf("reconcile %s error: %v", cfg.CalendarID, runErr)
	default:
		log.Printf("reconcile %s: %s", cfg.CalendarID, sum)
	}

	if cfg.AuditDBPath != "" {
		recordRun(cfg, started, sum, runErr)
	}
}

func loadLessons(path string) ([]domain.RawLesson, error) {
	raw, err := os.ReadFile(path)
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
