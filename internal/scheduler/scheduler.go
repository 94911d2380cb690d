package scheduler

import (
	"context"
	"fmt"
	"log"

	"PredictaTrade/internal/collector"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron tasks of a long-running dashboard.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	// WarmTicker, when set, is fetched again right after each refresh.
	WarmTicker string
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Ctx:       ctx,
	}
}

// RegisterRefresh registers the memo refresh task. An empty expression
// leaves the memo in place for the life of the process.
func (s *Scheduler) RegisterRefresh(refreshCron string) error {
	if refreshCron == "" {
		log.Println("[INFO] memo refresh disabled")
		return nil
	}
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	log.Printf("[INFO] memo refresh scheduled: %s", refreshCron)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running memo refresh")
	s.Collector.Invalidate()

	if s.WarmTicker == "" {
		return
	}
	series, err := s.Collector.Collect(s.Ctx, s.WarmTicker)
	if err != nil {
		log.Printf("[ERROR] warm %s: %v", s.WarmTicker, err)
		return
	}
	log.Printf("[INFO] warmed %s with %d rows", series.Symbol, len(series.Records))
}
