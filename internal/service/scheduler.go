package service

import (
	"time"

	"github.com/stratuminvest/stratum-backend/internal/logger"
)

// Scheduler invokes the settlement service once a day at the configured
// hour. Settlement is idempotent per calendar day, so a missed or
// doubled trigger is harmless; external cron hitting the admin endpoint
// works just as well.
type Scheduler struct {
	settlement SettlementService
	log        *logger.Logger
	hour       int
	stop       chan struct{}
}

func NewScheduler(settlement SettlementService, log *logger.Logger, hour int) *Scheduler {
	return &Scheduler{
		settlement: settlement,
		log:        log,
		hour:       hour,
		stop:       make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go func() {
		for {
			next := s.nextRun(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				summary, err := s.settlement.Run()
				if err != nil {
					s.log.WithError(err).Error("scheduled settlement run failed")
					continue
				}
				s.log.WithField("processed", summary.Processed).Info("scheduled settlement run done")
			case <-s.stop:
				timer.Stop()
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
