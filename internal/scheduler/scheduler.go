package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-gateway/internal/ratelimit"
	"github.com/i474232898/weather-gateway/internal/weather"
)

// checkTimeout bounds a single credential check.
const checkTimeout = 30 * time.Second

// Scheduler runs periodic maintenance: expiring rate-limit counters and
// re-checking the provider credential.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	service       *weather.Service
	store         *ratelimit.Store
	sweepInterval time.Duration
	checkInterval time.Duration
	logger        *zap.Logger
}

// New creates a new Scheduler. A zero sweepInterval or checkInterval disables
// the matching job.
func New(service *weather.Service, store *ratelimit.Store, sweepInterval, checkInterval time.Duration, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler:     s,
		service:       service,
		store:         store,
		sweepInterval: sweepInterval,
		checkInterval: checkInterval,
		logger:        logger.Named("scheduler"),
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.store != nil && s.sweepInterval > 0 {
		_, err := s.scheduler.Every(s.sweepInterval).WaitForSchedule().Do(s.sweepCounters)
		if err != nil {
			return err
		}
	}

	if s.service != nil && s.checkInterval > 0 {
		_, err := s.scheduler.Every(s.checkInterval).Do(s.checkCredential)
		if err != nil {
			return err
		}
	} else {
		s.logger.Info("credential check disabled")
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) sweepCounters() {
	removed := s.store.Sweep(time.Now())
	s.logger.Debug("swept rate-limit counters",
		zap.Int("removed", removed),
		zap.Int("remaining", s.store.Len()))
}

func (s *Scheduler) checkCredential() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	if s.service.ValidateCredential(ctx) {
		s.logger.Info("provider credential accepted")
		return
	}
	s.logger.Warn("provider credential rejected or provider unreachable")
}
