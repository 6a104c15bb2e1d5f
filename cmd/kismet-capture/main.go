// kismet-capture polls a Kismet server and forwards a summary report of
// nearby access points, client counts and recently seen devices to a
// collection API. Reports that cannot be forwarded are printed to stdout.
//
// Kismet connection and logging settings come from the environment (see
// internal/config); the flags below override the capture settings.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/usestring/kismetrest/internal/capture"
	"github.com/usestring/kismetrest/internal/config"
	"github.com/usestring/kismetrest/internal/logging"
	"github.com/usestring/kismetrest/internal/query"
	"github.com/usestring/kismetrest/pkg/client"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	hostname, _ := os.Hostname()
	var (
		name         string
		deviceFilter string
		lang         string
		once         bool
	)

	flagSet := pflag.NewFlagSet("kismet-capture", pflag.ContinueOnError)
	flagSet.StringVarP(&name, "dev-name", "n", hostname, "sensor name reported with every collection")
	flagSet.StringVar(&cfg.CaptureAPIURL, "api-url", cfg.CaptureAPIURL, "collection API to POST reports to (default: print reports)")
	flagSet.StringVar(&cfg.RestartCommand, "restart-cmd", cfg.RestartCommand, "shell command that restarts Kismet after a failure")
	flagSet.StringVar(&deviceFilter, "device-filter", "", `JQ predicate over reported devices (e.g. '.signalStrength > -80')`)
	flagSet.StringVar(&lang, "lang", "en", "language for number formatting in printed reports")
	flagSet.BoolVar(&once, "once", false, "collect a single report and exit")
	flagSet.StringVar(&cfg.KismetURI, "kismet-uri", cfg.KismetURI, "Kismet REST base URL")
	flagSet.DurationVar(&cfg.PollInterval, "interval", cfg.PollInterval, "time between collections")
	flagSet.DurationVar(&cfg.RecentWindow, "window", cfg.RecentWindow, "how far back recently seen devices are reported")
	flagSet.IntVar(&cfg.MaxRestarts, "max-restarts", cfg.MaxRestarts, "restarts allowed before giving up")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cleanup, err := logging.Setup(cfg.Logging())
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("invalid --lang %q: %w", lang, err)
	}

	collectorOpts := []capture.CollectorOption{capture.WithRecentWindow(cfg.RecentWindow)}
	if deviceFilter != "" {
		prog, err := query.NewEngine().Compile(deviceFilter)
		if err != nil {
			return fmt.Errorf("invalid --device-filter: %w", err)
		}
		collectorOpts = append(collectorOpts, capture.WithDeviceFilter(prog))
	}

	clientOpts := cfg.ClientOptions()
	newClient := func() *client.Client {
		return client.New(clientOpts...)
	}

	forwarder, err := capture.NewForwarder(cfg.CaptureAPIURL, capture.WithForwardTimeout(cfg.ForwardTimeout))
	if err != nil {
		return err
	}

	runner := capture.NewRunner(capture.RunnerConfig{
		Name:            name,
		PollInterval:    cfg.PollInterval,
		StartupAttempts: cfg.StartupAttempts,
		StartupInterval: cfg.StartupInterval,
		MaxRestarts:     cfg.MaxRestarts,
	},
		newClient,
		capture.NewCollector(newClient, collectorOpts...),
		forwarder,
		capture.NewPrinter(os.Stdout, tag),
		capture.WithRestart(capture.CommandRestart(cfg.RestartCommand)),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting capture",
		slog.String("name", name),
		slog.String("kismet", cfg.KismetURI),
		slog.String("api_url", cfg.CaptureAPIURL),
	)
	if once {
		return runner.RunOnce(ctx)
	}
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("capture stopped")
	return nil
}
