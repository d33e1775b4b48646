package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs the sync service on a fixed interval. Each run completes
// before the next sleep starts, so runs never overlap.
type Scheduler struct {
	service     *Service
	hoursBack   int
	minMeetings int
	logger      *zap.Logger
	stop        chan struct{}
	done        chan struct{}
}

// NewScheduler creates a scheduler over the given sync service
func NewScheduler(service *Service, hoursBack, minMeetings int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		service:     service,
		hoursBack:   hoursBack,
		minMeetings: minMeetings,
		logger:      logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the background loop: run once immediately, then run every
// intervalHours until Stop is called
func (s *Scheduler) Start(intervalHours int) {
	interval := time.Duration(intervalHours) * time.Hour

	go func() {
		defer close(s.done)
		s.logger.Info("⏰ Scheduler started",
			zap.Int("interval_hours", intervalHours),
		)

		for {
			ctx := context.Background()
			if _, err := s.service.Run(ctx, s.hoursBack, s.minMeetings); err != nil {
				s.logger.Error("❌ Scheduled run failed", zap.Error(err))
			}

			select {
			case <-s.stop:
				s.logger.Info("⏰ Scheduler stopped")
				return
			case <-time.After(interval):
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the current run to finish
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}
