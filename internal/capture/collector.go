package capture

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/kismetrest/internal/query"
	"github.com/usestring/kismetrest/pkg/client"
	"github.com/usestring/kismetrest/pkg/fieldpath"
)

// Summary sizes and windows.
const (
	recentAPCandidates = 15
	strongestAPs       = 6

	shortWindow         = 5 * time.Minute
	longWindow          = time.Hour
	DefaultRecentWindow = time.Hour
)

// ClientFactory returns a new client. Each concurrent query gets its own
// client since a client is not safe for concurrent use.
type ClientFactory func() *client.Client

// Collector gathers one Report from a Kismet server.
type Collector struct {
	newClient    ClientFactory
	now          func() time.Time
	recentWindow time.Duration
	keep         *query.Program
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithClock sets the clock device ages are computed against.
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) {
		c.now = now
	}
}

// WithRecentWindow sets how far back the device list reaches.
func WithRecentWindow(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.recentWindow = d
		}
	}
}

// WithDeviceFilter drops devices from the device list for which prog yields
// no truthy value. The program sees each device summary as forwarded.
func WithDeviceFilter(prog *query.Program) CollectorOption {
	return func(c *Collector) {
		c.keep = prog
	}
}

// NewCollector creates a collector that opens clients with newClient.
func NewCollector(newClient ClientFactory, opts ...CollectorOption) *Collector {
	c := &Collector{
		newClient:    newClient,
		now:          time.Now,
		recentWindow: DefaultRecentWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers the access point, client count and device views
// concurrently. The first failing view cancels the others and its error is
// returned unchanged, so callers can classify it with the client package's
// Is* helpers.
func (c *Collector) Collect(ctx context.Context, name string) (*Report, error) {
	start := time.Now()
	report := &Report{Name: name}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		aps, err := c.AccessPoints(ctx, c.newClient())
		report.AP = aps
		return err
	})
	g.Go(func() error {
		counts, err := c.ClientCounts(ctx, c.newClient())
		report.ClientCount = counts
		return err
	})
	g.Go(func() error {
		devices, err := c.RecentDevices(ctx, c.newClient())
		report.Devices = devices
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("collected report",
		slog.String("name", name),
		slog.Int("access_points", len(report.AP)),
		slog.Int("devices", len(report.Devices)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return report, nil
}

// summaries lists devices matching q as summaries.
func (c *Collector) summaries(ctx context.Context, kc *client.Client, q *client.DeviceQuery) ([]Device, error) {
	now := c.now()
	out := make([]Device, 0)
	_, err := kc.SmartDeviceList(ctx, q, func(rec any) error {
		dev, err := deviceFrom(rec, now)
		if err != nil {
			return err
		}
		out = append(out, dev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AccessPoints returns the strongest of the most recently seen access
// points.
func (c *Collector) AccessPoints(ctx context.Context, kc *client.Client) ([]Device, error) {
	aps, err := c.summaries(ctx, kc, &client.DeviceQuery{Fields: apFields, Regex: apRegex})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(aps, byAge)
	aps = aps[:min(len(aps), recentAPCandidates)]
	slices.SortStableFunc(aps, func(a, b Device) int {
		return cmp.Compare(b.SignalStrength, a.SignalStrength)
	})
	return aps[:min(len(aps), strongestAPs)], nil
}

// ClientCounts counts clients seen within the short and long windows.
func (c *Collector) ClientCounts(ctx context.Context, kc *client.Client) (ClientCounts, error) {
	var counts ClientCounts
	queries := []struct {
		dst         *int
		regex       fieldpath.Regex
		window      time.Duration
		globalsOnly bool
	}{
		{&counts.FilteredLast5Mins, clientRegex, shortWindow, true},
		{&counts.FilteredLastHour, clientRegex, longWindow, true},
		{&counts.ClientsLast5Mins, wideClientRegex, shortWindow, false},
		{&counts.ClientsLastHour, wideClientRegex, longWindow, false},
	}

	for _, q := range queries {
		n := 0
		_, err := kc.SmartDeviceList(ctx, &client.DeviceQuery{
			Since:  since(q.window),
			Fields: clientFields,
			Regex:  q.regex,
		}, func(rec any) error {
			if q.globalsOnly {
				m, _ := rec.(map[string]any)
				if !globallyAdministered(stringField(m, "macAddress")) {
					return nil
				}
			}
			n++
			return nil
		})
		if err != nil {
			return ClientCounts{}, fmt.Errorf("counting clients: %w", err)
		}
		*q.dst = n
	}
	return counts, nil
}

// RecentDevices lists every device seen within the recent window, newest
// first.
func (c *Collector) RecentDevices(ctx context.Context, kc *client.Client) ([]Device, error) {
	devices, err := c.summaries(ctx, kc, &client.DeviceQuery{
		Since:  since(c.recentWindow),
		Fields: deviceFields,
	})
	if err != nil {
		return nil, err
	}

	if c.keep != nil {
		kept := devices[:0]
		for _, dev := range devices {
			v, err := query.Normalize(dev)
			if err != nil {
				return nil, err
			}
			if c.keep.Keep(v) {
				kept = append(kept, dev)
			}
		}
		slog.Debug("device filter applied",
			slog.String("filter", c.keep.String()),
			slog.Int("seen", len(devices)),
			slog.Int("kept", len(kept)),
		)
		devices = kept
	}

	slices.SortStableFunc(devices, byAge)
	return devices, nil
}

func byAge(a, b Device) int {
	return cmp.Compare(a.Age, b.Age)
}

// since converts a window into a relative Kismet timestamp.
func since(window time.Duration) int64 {
	return -int64(window / time.Second)
}
