package client

import (
	"context"
	"fmt"
	"time"
)

// AlertDefinition describes a custom alert that can later be raised with
// RaiseAlert.
type AlertDefinition struct {
	Name        string
	Description string
	Rate        string // throttle, e.g. "10/min"; defaults to "10/min"
	Burst       string // burst limit, e.g. "1/sec"; defaults to "1/sec"
	PhyName     string // optional; ties the alert to one phy type
}

// Alert is a request to raise an alert. Name and Text are required.
type Alert struct {
	Name    string
	Text    string
	BSSID   string
	Source  string
	Dest    string
	Other   string
	Channel string
}

// DefineAlert registers a new alert type. Requires a login.
func (c *Client) DefineAlert(ctx context.Context, def AlertDefinition) error {
	rate, burst := def.Rate, def.Burst
	if rate == "" {
		rate = "10/min"
	}
	if burst == "" {
		burst = "1/sec"
	}
	cmd := Command{
		"name":        def.Name,
		"description": def.Description,
		"throttle":    rate,
		"burst":       burst,
	}
	if def.PhyName != "" {
		cmd.Set("phyname", def.PhyName)
	}

	if _, err := c.command(ctx, "alerts/definitions/define_alert.cmd", cmd); err != nil {
		return fmt.Errorf("defining alert %q: %w", def.Name, err)
	}
	return nil
}

// RaiseAlert triggers an alert, either one from DefineAlert or a built-in
// one. Requires a login.
func (c *Client) RaiseAlert(ctx context.Context, a Alert) error {
	cmd := Command{"name": a.Name, "text": a.Text}
	optional := map[string]string{
		"bssid":   a.BSSID,
		"source":  a.Source,
		"dest":    a.Dest,
		"other":   a.Other,
		"channel": a.Channel,
	}
	for k, v := range optional {
		if v != "" {
			cmd.Set(k, v)
		}
	}

	if _, err := c.command(ctx, "alerts/raise_alert.cmd", cmd); err != nil {
		return fmt.Errorf("raising alert %q: %w", a.Name, err)
	}
	return nil
}

// Alerts fetches the alert record (metadata plus the alert list), limited
// to alerts after since. A zero since returns all retained alerts.
func (c *Client) Alerts(ctx context.Context, since time.Time) (any, error) {
	alerts, err := c.getOne(ctx, "alerts/last-time/"+timestamp(since)+"/alerts.json")
	if err != nil {
		return nil, fmt.Errorf("getting alerts: %w", err)
	}
	return alerts, nil
}

// Messages fetches the message bus record, limited to messages after since.
func (c *Client) Messages(ctx context.Context, since time.Time) (any, error) {
	msgs, err := c.getOne(ctx, "messagebus/last-time/"+timestamp(since)+"/messages.json")
	if err != nil {
		return nil, fmt.Errorf("getting messages: %w", err)
	}
	return msgs, nil
}

// timestamp renders t as Kismet's "seconds.microseconds" path element.
func timestamp(t time.Time) string {
	if t.IsZero() {
		return "0.0"
	}
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}
