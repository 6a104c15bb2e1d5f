// Package client provides a Go SDK for the Kismet REST API.
//
// Kismet is a long-running wireless sensor daemon that exposes its device
// tracking, datasources, alerts and GPS state over HTTP. This client manages
// an authenticated session, encodes Kismet's field simplification and regex
// filter protocol, and decodes responses without holding large result sets
// in memory.
//
// # Quick Start
//
// Create a client and fetch the server status:
//
//	c := client.New()
//	status, err := c.SystemStatus(ctx)
//
// Use custom configuration:
//
//	c := client.New(
//	    client.WithBaseURL("http://sensor.local:2501"),
//	    client.WithLogin("kismet", "secret"),
//	    client.WithSessionCache("/var/lib/collector/kismet_session"),
//	)
//
// # Sessions
//
// Kismet hands out a session cookie named KISMET. The client attaches the
// cached cookie to every request, records any new one the server sets, and
// persists it to a cache file (~/.kismet_session by default) so a restarted
// process does not need to log in again. A missing cache file is not an
// error, and failing to write it only costs a future login.
//
// # Field Simplification and Regex Filters
//
// Device endpoints accept a field list that reduces each device to the named
// fields, optionally renamed, and a regex list that keeps only devices
// matching at least one (field, pattern) pair:
//
//	devices, err := c.SmartDeviceList(ctx, &client.DeviceQuery{
//	    Since: -300,
//	    Fields: client.Fields{
//	        fieldpath.As("kismet.device.base.macaddr", "mac"),
//	        fieldpath.As("kismet.device.base.signal/kismet.common.signal.last_signal", "signal"),
//	    },
//	    Regex: client.Regex{
//	        fieldpath.Match("kismet.device.base.type", "^Wi-Fi AP$"),
//	    },
//	}, nil)
//
// A nil list is left out of the request; an empty list is sent as-is, which
// Kismet treats differently (no fields rather than all fields).
//
// # Streaming
//
// Multi-object endpoints use Kismet's ekjson format, one JSON document per
// line. Pass a Visitor to handle each object as it arrives instead of
// collecting them:
//
//	_, err := c.DeviceList(ctx, func(dev any) error {
//	    count++
//	    return nil
//	})
//
// # Errors
//
// Failures are reported as *LoginRequiredError (HTTP 401), *RequestFailedError
// (other statuses, or StatusUnreachable when the server could not be reached)
// and *MalformedResponseError (a body that does not parse). The client never
// retries; use errors.As or the Is* helpers to decide what to do.
package client
