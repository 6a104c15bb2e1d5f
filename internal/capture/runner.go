package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/usestring/kismetrest/pkg/client"
)

// statusReadyKey is present in the system status once the server has
// started tracking devices.
const statusReadyKey = "kismet.system.devices.count"

// ErrNotReady is returned when the server never reported ready within the
// startup attempts and restarts allowed.
var ErrNotReady = errors.New("capture: kismet did not become ready")

// RunnerConfig holds the timing and identity of a Runner.
type RunnerConfig struct {
	Name            string        // reported sensor name
	PollInterval    time.Duration // time between collections
	StartupAttempts int           // status checks before a startup is considered failed
	StartupInterval time.Duration // time between status checks
	MaxRestarts     int           // restarts allowed before Run gives up
}

// RestartFunc restarts the Kismet server, for example by running a service
// manager command.
type RestartFunc func(ctx context.Context) error

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Runner drives the collect-and-forward loop.
type Runner struct {
	cfg       RunnerConfig
	newClient ClientFactory
	collector *Collector
	forwarder *Forwarder
	printer   *Printer
	restart   RestartFunc
	sleep     SleepFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRestart sets the hook run before waiting for the server again after
// it stopped answering.
func WithRestart(fn RestartFunc) RunnerOption {
	return func(r *Runner) {
		r.restart = fn
	}
}

// WithSleep replaces the wait between polls and status checks.
func WithSleep(fn SleepFunc) RunnerOption {
	return func(r *Runner) {
		r.sleep = fn
	}
}

// NewRunner creates a runner. Reports that cannot be forwarded are written
// by printer.
func NewRunner(cfg RunnerConfig, newClient ClientFactory, collector *Collector, forwarder *Forwarder, printer *Printer, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:       cfg,
		newClient: newClient,
		collector: collector,
		forwarder: forwarder,
		printer:   printer,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run waits for the server, then collects and forwards a report every poll
// interval until ctx is done. When the server stops answering or sends
// malformed data, the restart hook is run and the startup wait begins again.
// Run returns ctx's error on cancellation, or the last failure once more
// than MaxRestarts consecutive restarts were needed. A restart that is
// followed by at least one completed poll clears the count.
func (r *Runner) Run(ctx context.Context) error {
	restarts := 0
	for {
		var cause error
		if r.WaitReady(ctx) {
			slog.Info("kismet is running", slog.String("name", r.cfg.Name))
			var completed int
			completed, cause = r.poll(ctx)
			if completed > 0 {
				restarts = 0
			}
		} else {
			cause = ErrNotReady
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		restarts++
		if restarts > r.cfg.MaxRestarts {
			return fmt.Errorf("giving up after %d restarts: %w", r.cfg.MaxRestarts, cause)
		}

		slog.Warn("restarting kismet",
			slog.String("error", cause.Error()),
			slog.Int("restart", restarts),
			slog.Int("max_restarts", r.cfg.MaxRestarts),
		)
		if r.restart != nil {
			if err := r.restart(ctx); err != nil {
				slog.Error("restart hook failed", slog.String("error", err.Error()))
			}
		}
	}
}

// WaitReady polls the system status until it reports the device count,
// up to StartupAttempts times.
func (r *Runner) WaitReady(ctx context.Context) bool {
	for attempt := 1; attempt <= r.cfg.StartupAttempts; attempt++ {
		status, err := r.newClient().SystemStatus(ctx)
		if err == nil {
			if m, ok := status.(map[string]any); ok {
				if _, ok := m[statusReadyKey]; ok {
					return true
				}
			}
		} else {
			slog.Debug("kismet not ready",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		}

		if attempt == r.cfg.StartupAttempts {
			break
		}
		if err := r.sleep(ctx, r.cfg.StartupInterval); err != nil {
			return false
		}
	}
	return false
}

// poll collects until ctx is done or the server fails in a way that calls
// for a restart. It returns the number of collections that completed and
// the failure that ended the loop.
func (r *Runner) poll(ctx context.Context) (int, error) {
	completed := 0
	for {
		if err := r.RunOnce(ctx); err != nil {
			return completed, err
		}
		completed++
		if err := r.sleep(ctx, r.cfg.PollInterval); err != nil {
			return completed, err
		}
	}
}

// RunOnce collects and delivers one report. A login failure is logged and
// skipped; any other collection failure is returned.
func (r *Runner) RunOnce(ctx context.Context) error {
	report, err := r.collector.Collect(ctx, r.cfg.Name)
	switch {
	case err == nil:
		r.deliver(ctx, report)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case client.IsLoginRequired(err):
		slog.Warn("kismet login required, skipping collection", slog.String("error", err.Error()))
		return nil
	default:
		return err
	}
}

// deliver forwards report, printing it instead when there is no
// destination or forwarding fails.
func (r *Runner) deliver(ctx context.Context, report *Report) {
	err := r.forwarder.Forward(ctx, report)
	if err == nil {
		slog.Info("report forwarded",
			slog.String("url", r.forwarder.URL()),
			slog.Int("devices", len(report.Devices)),
		)
		return
	}
	if !errors.Is(err, ErrNoDestination) {
		slog.Warn("forwarding failed, printing report", slog.String("error", err.Error()))
	}
	if err := r.printer.Print(report); err != nil {
		slog.Error("printing report failed", slog.String("error", err.Error()))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
