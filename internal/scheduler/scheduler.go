// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const promoSweepJob = "promo-expiry-sweep"

// PromoExpirer deactivates the promotion once its end date has passed.
type PromoExpirer interface {
	ExpirePromo(ctx context.Context, now time.Time) (bool, error)
}

// Scheduler owns the gocron scheduler and the jobs registered on it.
type Scheduler struct {
	cron    gocron.Scheduler
	expirer PromoExpirer
	timeout time.Duration
	now     func() time.Time
}

// New registers the promo expiry sweep to run every interval, starting immediately.
// Runs never overlap; a run still in progress when the next is due is skipped.
func New(expirer PromoExpirer, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		cron:    cron,
		expirer: expirer,
		timeout: interval,
		now:     time.Now,
	}

	_, err = cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sweepPromo),
		gocron.WithName(promoSweepJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = cron.Shutdown()
		return nil, fmt.Errorf("register %s: %w", promoSweepJob, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Str("job", promoSweepJob).Msg("scheduler started")
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Shutdown() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) sweepPromo() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	now := s.now().UTC()
	expired, err := s.expirer.ExpirePromo(ctx, now)
	if err != nil {
		log.Error().Err(err).Str("job", promoSweepJob).Msg("promo expiry sweep failed")
		return
	}
	if expired {
		log.Info().Str("job", promoSweepJob).Time("at", now).Msg("promotion ended and was deactivated")
	}
}
