package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"MetalPulse/internal/updater"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron-driven daily update.
type Scheduler struct {
	Cron    *cron.Cron
	Updater *updater.Updater
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, u *updater.Updater) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Updater: u,
		Ctx:     ctx,
	}
}

// Register registers the daily update task.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily update")
	if err := s.Updater.Run(s.Ctx); err != nil {
		var verr *updater.ValidationError
		if errors.As(err, &verr) {
			log.Printf("[ERROR] daily update rejected: %v", verr)
			return
		}
		log.Printf("[ERROR] daily update: %v", err)
	}
}
