package tools

import (
	"context"
	"math"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/kismetrest/pkg/client"
)

// AlertsInput is the input for kismet_alerts.
type AlertsInput struct {
	Since           float64 `json:"since,omitempty" jsonschema:"Only alerts after this Unix timestamp in seconds (default: all retained alerts)"`
	IncludeMessages bool    `json:"include_messages,omitempty" jsonschema:"Also return message bus entries after the same timestamp (default: false)"`
}

// AlertsOutput is the output for kismet_alerts.
type AlertsOutput struct {
	Alerts   any `json:"alerts" jsonschema:"Alert record; kismet.alert.timestamp can be passed back as since to page forward"`
	Messages any `json:"messages,omitempty"`
}

// ToolAlerts lists alerts raised by the server.
func ToolAlerts(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input AlertsInput) (*sdkmcp.CallToolResult, AlertsOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input AlertsInput) (*sdkmcp.CallToolResult, AlertsOutput, error) {
		if input.Since < 0 {
			return nil, AlertsOutput{}, ErrInvalidInput("since must be a Unix timestamp, not negative")
		}
		since := unixTime(input.Since)

		var output AlertsOutput
		err := d.Do(func(c *client.Client) error {
			alerts, err := c.Alerts(ctx, since)
			if err != nil {
				return err
			}
			output.Alerts = alerts
			if input.IncludeMessages {
				output.Messages, err = c.Messages(ctx, since)
			}
			return err
		})
		if err != nil {
			return nil, AlertsOutput{}, WrapKismetError(err)
		}
		return nil, output, nil
	}
}

// unixTime converts fractional seconds to a time, keeping microseconds.
// Zero maps to the zero time.
func unixTime(sec float64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond))
}
