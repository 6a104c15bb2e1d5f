package tools

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/kismetrest/internal/query"
	"github.com/usestring/kismetrest/pkg/client"
	"github.com/usestring/kismetrest/pkg/jsoncompact"
)

// errLimitReached stops a device stream once enough results are held.
var errLimitReached = errors.New("device limit reached")

// DevicesInput is the input for kismet_devices.
type DevicesInput struct {
	Since       int64        `json:"since,omitempty" jsonschema:"Only devices active after this time: a Unix timestamp, or negative seconds relative to now (-300 is the last 5 minutes). Default: all devices"`
	MACs        []string     `json:"macs,omitempty" jsonschema:"Only devices with these MAC addresses; masks like AA:BB:CC:00:00:00/FF:FF:FF:00:00:00 are allowed. Ignores since"`
	Fields      []FieldInput `json:"fields,omitempty" jsonschema:"Return only these fields of each device (strongly recommended; whole devices are large)"`
	Regex       []RegexInput `json:"regex,omitempty" jsonschema:"Keep devices where any term matches"`
	JQ          string       `json:"jq,omitempty" jsonschema:"JQ expression run against each device; its outputs replace the device records"`
	Deduplicate bool         `json:"deduplicate,omitempty" jsonschema:"Remove duplicate JQ outputs (default: false)"`
	Limit       int          `json:"limit,omitempty" jsonschema:"Max results to return (default: 50, max: 5000)"`
	Full        bool         `json:"full,omitempty" jsonschema:"Return whole records untrimmed when no fields or jq are given (default: long arrays trimmed and RRD history dropped)"`
}

// DevicesOutput is the output for kismet_devices.
type DevicesOutput struct {
	Devices   []any    `json:"devices,omitzero"`
	Count     int      `json:"count"`
	Scanned   int      `json:"scanned"`
	Truncated bool     `json:"truncated,omitempty"`
	Errors    []string `json:"errors,omitempty"`
	Hint      string   `json:"hint,omitempty"`
}

// DeviceInput is the input for kismet_device.
type DeviceInput struct {
	Key    string       `json:"key,omitempty" jsonschema:"Device key (kismet.device.base.key)"`
	MAC    string       `json:"mac,omitempty" jsonschema:"MAC address; returns every device using it across phy types"`
	Field  string       `json:"field,omitempty" jsonschema:"Return only the value at this path (key lookups only)"`
	Fields []FieldInput `json:"fields,omitempty" jsonschema:"Return only these fields"`
	Full   bool         `json:"full,omitempty" jsonschema:"Return the whole record untrimmed (default: long arrays trimmed and RRD history dropped)"`
}

// DeviceOutput is the output for kismet_device.
type DeviceOutput struct {
	Device any `json:"device"`
}

// ToolDevices lists devices. Records are streamed from the server and only
// the results that fit within the limit are kept.
func ToolDevices(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DevicesInput) (*sdkmcp.CallToolResult, DevicesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DevicesInput) (*sdkmcp.CallToolResult, DevicesOutput, error) {
		fields, err := toFields(input.Fields)
		if err != nil {
			return nil, DevicesOutput{}, err
		}
		regex, err := toRegex(input.Regex)
		if err != nil {
			return nil, DevicesOutput{}, err
		}
		if len(input.MACs) > 0 && regex != nil {
			return nil, DevicesOutput{}, ErrInvalidInput("regex cannot be combined with macs")
		}

		var prog *query.Program
		if input.JQ != "" {
			prog, err = d.Query.Compile(input.JQ)
			if err != nil {
				return nil, DevicesOutput{}, ErrInvalidInput(err.Error())
			}
		}

		compact := fields == nil && prog == nil && !input.Full

		acc := query.NewAccumulator(prog, input.Deduplicate, d.deviceLimit(input.Limit))
		visit := func(dev any) error {
			if compact {
				dev = jsoncompact.CompactValue(dev, nil)
			}
			if !acc.Add(fmt.Sprintf("device[%d]", acc.Result().Records), dev) {
				return errLimitReached
			}
			return nil
		}

		err = d.Do(func(c *client.Client) error {
			if len(input.MACs) > 0 {
				_, err := c.DevicesByMAC(ctx, input.MACs, fields, visit)
				return err
			}
			_, err := c.SmartDeviceList(ctx, &client.DeviceQuery{Since: input.Since, Fields: fields, Regex: regex}, visit)
			return err
		})
		if err != nil && !errors.Is(err, errLimitReached) {
			return nil, DevicesOutput{}, WrapKismetError(err)
		}

		res := acc.Result()
		output := DevicesOutput{
			Devices:   res.Values,
			Count:     len(res.Values),
			Scanned:   res.Records,
			Truncated: res.Truncated,
			Errors:    res.Errors,
		}
		switch {
		case output.Truncated:
			output.Hint = "More results exist; narrow with since, regex, or jq, or raise limit"
		case output.Count == 0 && prog != nil && res.Records > 0:
			output.Hint = "No JQ output; check field names against fields, which rename values to their alias or last path segment"
		case compact && output.Count > 0:
			output.Hint = "Records are trimmed; pass fields to return only the values you need, or full for whole records"
		}
		return nil, output, nil
	}
}

// ToolDevice gets a single device by key or MAC address.
func ToolDevice(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DeviceInput) (*sdkmcp.CallToolResult, DeviceOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DeviceInput) (*sdkmcp.CallToolResult, DeviceOutput, error) {
		if (input.Key == "") == (input.MAC == "") {
			return nil, DeviceOutput{}, ErrInvalidInput("exactly one of key or mac is required")
		}
		if input.Field != "" && input.Key == "" {
			return nil, DeviceOutput{}, ErrInvalidInput("field is only supported with key")
		}
		fields, err := toFields(input.Fields)
		if err != nil {
			return nil, DeviceOutput{}, err
		}

		var device any
		err = d.Do(func(c *client.Client) error {
			var err error
			if input.Key != "" {
				device, err = c.DeviceByKey(ctx, input.Key, input.Field, fields)
			} else {
				device, err = c.DeviceByMAC(ctx, input.MAC, fields)
			}
			return err
		})
		if err != nil {
			return nil, DeviceOutput{}, WrapKismetError(err)
		}
		if fields == nil && input.Field == "" && !input.Full {
			device = jsoncompact.CompactValue(device, nil)
		}
		return nil, DeviceOutput{Device: device}, nil
	}
}
