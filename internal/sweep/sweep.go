// Package sweep runs the periodic job that cancels reservations stuck in
// pending past their TTL, for both stays and tours.
package sweep

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer is any service that can system-cancel stale pending reservations.
type Expirer interface {
	ExpirePending(ctx context.Context, before time.Time) (int, error)
}

type Sweeper struct {
	cron       *cron.Cron
	pendingTTL time.Duration
	expirers   []Expirer
	log        *zap.Logger
}

func NewSweeper(pendingTTL time.Duration, log *zap.Logger, expirers ...Expirer) *Sweeper {
	return &Sweeper{
		cron:       cron.New(),
		pendingTTL: pendingTTL,
		expirers:   expirers,
		log:        log,
	}
}

// Start registers the sweep on the given cron spec and starts the scheduler.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("expiry sweep scheduled", zap.String("spec", spec), zap.Duration("pending_ttl", s.pendingTTL))
	return nil
}

// Run executes one sweep pass. Exported so the job can also be triggered
// out of schedule.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.pendingTTL)
	for _, e := range s.expirers {
		n, err := e.ExpirePending(ctx, cutoff)
		if err != nil {
			s.log.Error("expiry sweep failed", zap.Error(err))
			continue
		}
		if n > 0 {
			s.log.Info("expired pending reservations", zap.Int("count", n), zap.Time("cutoff", cutoff))
		}
	}
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
