package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// AvailabilityPurger deletes availability rows dated before a cutoff
type AvailabilityPurger interface {
	PurgeAvailabilityBefore(cutoff time.Time) (int64, error)
}

// CronService manages scheduled background jobs
type CronService struct {
	cron          *cron.Cron
	purger        AvailabilityPurger
	schedule      string
	retentionDays int
	logger        *logrus.Logger
	now           func() time.Time
}

// NewCronService creates a new CronService.
// schedule uses the six-field format: second minute hour day month weekday.
func NewCronService(purger AvailabilityPurger, schedule string, retentionDays int, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:          cron.New(cron.WithSeconds()),
		purger:        purger,
		schedule:      schedule,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.purgeAvailabilityJob); err != nil {
		return fmt.Errorf("failed to schedule availability purge job: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"schedule":       s.schedule,
		"retention_days": s.retentionDays,
	}).Info("Scheduled availability purge")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// RunPurgeNow runs the availability purge immediately
func (s *CronService) RunPurgeNow() (int64, error) {
	cutoff := s.cutoff()
	return s.purger.PurgeAvailabilityBefore(cutoff)
}

func (s *CronService) cutoff() time.Time {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -s.retentionDays)
}

func (s *CronService) purgeAvailabilityJob() {
	start := time.Now()
	purged, err := s.RunPurgeNow()
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Availability purge failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"purged":   purged,
		"duration": time.Since(start).String(),
	}).Info("[CRON] Availability purge finished")
}
