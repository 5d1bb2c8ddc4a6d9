package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/robfig/cron/v3"
)

const (
	defaultDispatchInterval = 2 * time.Second
	defaultSweepInterval    = time.Minute
)

// cronLogger routes robfig/cron's logging through slog.
type cronLogger struct{ logger *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

// Jobs runs the outbox dispatcher and the stuck-payment sweeps on a schedule.
// A run that is still going when its next tick fires is skipped.
type Jobs struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// StartJobs schedules the background jobs and starts them.
func (a *App) StartJobs() (*Jobs, error) {
	clog := cronLogger{logger: a.Deps.Logger.With("component", "cron")}
	ctx, cancel := context.WithCancel(context.Background())
	j := &Jobs{
		cron:   cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog))),
		ctx:    ctx,
		cancel: cancel,
	}

	dispatchEvery, sweepEvery := defaultDispatchInterval, defaultSweepInterval
	if a.Config.Outbox != nil && a.Config.Outbox.Interval > 0 {
		dispatchEvery = a.Config.Outbox.Interval
	}
	if a.Config.Disbursement != nil && a.Config.Disbursement.SweepInterval > 0 {
		sweepEvery = a.Config.Disbursement.SweepInterval
	}

	if err := j.every(dispatchEvery, a.DispatchOutbox); err != nil {
		cancel()
		return nil, err
	}
	if a.Config.Runs(config.ServiceDisbursement) {
		if err := j.every(sweepEvery, a.sweep("disbursement", a.DisbursementService.SweepStuck)); err != nil {
			cancel()
			return nil, err
		}
	}
	if a.Config.Runs(config.ServiceRepayment) {
		if err := j.every(sweepEvery, a.sweep("repayment", a.RepaymentService.SweepStuck)); err != nil {
			cancel()
			return nil, err
		}
	}

	j.cron.Start()
	a.logger.Info("⏰ Background jobs started", "dispatch_every", dispatchEvery, "sweep_every", sweepEvery)
	return j, nil
}

func (j *Jobs) every(interval time.Duration, run func(context.Context)) error {
	_, err := j.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() { run(j.ctx) })
	if err != nil {
		return fmt.Errorf("schedule job every %s: %w", interval, err)
	}
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (j *Jobs) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
}

// DispatchOutbox publishes pending outbox messages until a batch comes back
// empty or fails.
func (a *App) DispatchOutbox(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := a.Dispatcher.Dispatch(ctx)
		if err != nil {
			a.logger.Error("❌ [ERROR] Outbox dispatch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
	}
}

func (a *App) sweep(name string, sweepStuck func(context.Context, time.Time) (int, error)) func(context.Context) {
	return func(ctx context.Context) {
		n, err := sweepStuck(ctx, time.Now().UTC())
		if err != nil {
			a.logger.Error("❌ [ERROR] Stuck payment sweep failed", "kind", name, "error", err)
			return
		}
		if n > 0 {
			a.logger.Warn("⚠️ Stuck payments failed by sweep", "kind", name, "count", n)
		}
	}
}
