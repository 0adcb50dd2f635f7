package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"jobgate/api/internal/expiry"
	"jobgate/api/internal/metrics"
	"jobgate/api/internal/session"
)

// Scheduler runs the background sweep that clears expired sessions out of
// the store. The sweep uses the most lenient configured policy (the
// extended one), so it never evicts a session that any role's policy would
// still accept; the per-request check remains the authority on stricter
// policies.
type Scheduler struct {
	cron     *cron.Cron
	store    session.Store
	lenient  expiry.Policy
	schedule string
	metrics  *metrics.AuthMetrics
	log      zerolog.Logger
}

func NewScheduler(
	store session.Store,
	lenient expiry.Policy,
	schedule string,
	m *metrics.AuthMetrics,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		store:    store,
		lenient:  lenient,
		schedule: schedule,
		metrics:  m,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits briefly for an in-flight sweep.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("session sweep did not stop in time")
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.store.Sweep(ctx, s.lenient.IsExpired)
	if err != nil {
		s.log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("expired sessions swept")
	}

	if s.metrics != nil {
		s.metrics.SweptTotal.Add(float64(removed))
		if count, err := s.store.Count(ctx); err == nil {
			s.metrics.LiveSessions.Set(float64(count))
		}
	}
}
