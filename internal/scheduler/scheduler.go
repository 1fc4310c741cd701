// Package scheduler runs the periodic filings re-import job.
package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/mxfunds/nav-analytics-backend/internal/config"
	"github.com/mxfunds/nav-analytics-backend/internal/service"
)

// Scheduler owns the cron runner. Start is a no-op when no schedule is
// configured.
type Scheduler struct {
	cron         *cron.Cron
	reconService *service.ReconciliationService
	cfg          *config.Config
}

// New creates a Scheduler over the reconciliation service.
func New(reconService *service.ReconciliationService, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		reconService: reconService,
		cfg:          cfg,
	}
}

// Start registers the re-import job and launches the cron loop.
func (s *Scheduler) Start() error {
	if s.cfg.Sync.Schedule == "" || len(s.cfg.Sync.Tickers) == 0 {
		log.Println("sync schedule not configured, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Sync.Schedule, s.runImport)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("scheduler started: %q for %v", s.cfg.Sync.Schedule, s.cfg.Sync.Tickers)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runImport() {
	results := s.reconService.ImportAll(context.Background(), s.cfg.FilingsDir, s.cfg.Sync.Tickers)
	for _, res := range results {
		if res.Error != "" {
			log.Printf("scheduled import %s failed: %s", res.Ticker, res.Error)
			continue
		}
		log.Printf("scheduled import %s: %d periods", res.Ticker, res.Periods)
	}
}
