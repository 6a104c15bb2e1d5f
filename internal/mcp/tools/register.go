package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "kismet_system_status",
		Description: "Get the Kismet server status: version, uptime, memory use, and the number of tracked devices. Use this first to check the server is reachable.",
	}, ToolSystemStatus(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "kismet_devices",
		Description: "List tracked devices. Returns {devices, count, scanned, truncated, errors, hint}. Filter by activity with since (negative seconds are relative, -300 is the last 5 minutes), by MAC with macs, or by field regex with regex. Pass fields to simplify each device to the values you need; values are keyed by alias or the last path segment. Set jq to transform or filter each device (e.g. 'select(.signal > -70) | .name'); JQ runs after field simplification. Results stop at limit.",
	}, ToolDevices(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "kismet_device",
		Description: "Get one device by key, or the devices using a MAC address. Use field to fetch a single value by path, or fields to simplify the record.",
	}, ToolDevice(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "kismet_alerts",
		Description: "List alerts raised by Kismet (deauth floods, spoofed APs, and similar). Pass since (Unix seconds) to get only newer alerts; the returned kismet.alert.timestamp is the value to pass next time. Set include_messages for the message bus too.",
	}, ToolAlerts(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "kismet_datasources",
		Description: "List capture datasources with their interface, channel and hopping state. Set include_interfaces to also list interfaces that could be added.",
	}, ToolDatasources(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "kismet_location",
		Description: "Get the current GPS location of the sensor, if a GPS is configured.",
	}, ToolLocation(d))
}
