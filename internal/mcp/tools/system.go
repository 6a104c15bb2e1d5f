package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/kismetrest/pkg/client"
)

// SystemStatusInput is the input for kismet_system_status.
type SystemStatusInput struct{}

// SystemStatusOutput is the output for kismet_system_status.
type SystemStatusOutput struct {
	Status any `json:"status" jsonschema:"Server status record (version, uptime, memory, device count)"`
}

// DatasourcesInput is the input for kismet_datasources.
type DatasourcesInput struct {
	IncludeInterfaces bool `json:"include_interfaces,omitempty" jsonschema:"Also list interfaces that could be added as datasources (default: false)"`
}

// DatasourcesOutput is the output for kismet_datasources.
type DatasourcesOutput struct {
	Datasources any `json:"datasources"`
	Interfaces  any `json:"interfaces,omitempty"`
}

// LocationInput is the input for kismet_location.
type LocationInput struct{}

// LocationOutput is the output for kismet_location.
type LocationOutput struct {
	Location any `json:"location" jsonschema:"Current GPS record; check kismet.common.location.valid before using the fix"`
}

// ToolSystemStatus reports the server status.
func ToolSystemStatus(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SystemStatusInput) (*sdkmcp.CallToolResult, SystemStatusOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SystemStatusInput) (*sdkmcp.CallToolResult, SystemStatusOutput, error) {
		var status any
		err := d.Do(func(c *client.Client) error {
			var err error
			status, err = c.SystemStatus(ctx)
			return err
		})
		if err != nil {
			return nil, SystemStatusOutput{}, WrapKismetError(err)
		}
		return nil, SystemStatusOutput{Status: status}, nil
	}
}

// ToolDatasources lists the capture sources.
func ToolDatasources(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input DatasourcesInput) (*sdkmcp.CallToolResult, DatasourcesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input DatasourcesInput) (*sdkmcp.CallToolResult, DatasourcesOutput, error) {
		var output DatasourcesOutput
		err := d.Do(func(c *client.Client) error {
			sources, err := c.Datasources(ctx)
			if err != nil {
				return err
			}
			output.Datasources = sources
			if input.IncludeInterfaces {
				output.Interfaces, err = c.DatasourceInterfaces(ctx)
			}
			return err
		})
		if err != nil {
			return nil, DatasourcesOutput{}, WrapKismetError(err)
		}
		return nil, output, nil
	}
}

// ToolLocation reports the GPS location.
func ToolLocation(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input LocationInput) (*sdkmcp.CallToolResult, LocationOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input LocationInput) (*sdkmcp.CallToolResult, LocationOutput, error) {
		var loc any
		err := d.Do(func(c *client.Client) error {
			var err error
			loc, err = c.Location(ctx)
			return err
		})
		if err != nil {
			return nil, LocationOutput{}, WrapKismetError(err)
		}
		return nil, LocationOutput{Location: loc}, nil
	}
}
