package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"aquapulse/internal/observability/metrics"
)

const DefaultSchedule = "*/5 * * * *"

// ResetCodeCleaner clears lapsed reset codes and reports how many it touched.
type ResetCodeCleaner interface {
	ClearExpiredResetCodes(ctx context.Context) (int64, error)
}

type Janitor struct {
	cleaner ResetCodeCleaner
	log     *slog.Logger
	timeout time.Duration
	cron    *cron.Cron
}

func New(cleaner ResetCodeCleaner, log *slog.Logger) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{
		cleaner: cleaner,
		log:     log.With("component", "janitor"),
		timeout: 30 * time.Second,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Schedule registers the cleanup job. An empty spec uses DefaultSchedule.
func (j *Janitor) Schedule(spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}
	if _, err := j.cron.AddFunc(spec, func() { _, _ = j.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	j.log.Info("janitor scheduled", "schedule", spec)
	return nil
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the scheduler and waits for a running job, or for ctx.
func (j *Janitor) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	n, err := j.cleaner.ClearExpiredResetCodes(ctx)
	if n > 0 {
		metrics.JanitorClearedTotal.Add(float64(n))
	}
	if err != nil {
		j.log.Error("clearing expired reset codes failed", "cleared", n, "err", err)
		return n, err
	}
	if n > 0 {
		j.log.Info("cleared expired reset codes", "cleared", n)
	}
	return n, nil
}
