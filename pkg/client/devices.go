package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DeviceQuery narrows a device list.
type DeviceQuery struct {
	// Since only returns devices active after this Kismet timestamp, in
	// seconds. Negative values are relative to the server's clock (-300 is
	// "the last five minutes"); 0 returns every device.
	Since int64
	// Fields simplifies each device to the listed fields. Nil returns whole
	// devices.
	Fields Fields
	// Regex keeps only devices matching at least one term. Nil disables
	// filtering.
	Regex Regex
}

// DeviceList streams every field of every device. This is expensive on busy
// sensors; prefer SmartDeviceList with a field list.
//
// With a visitor each device is delivered as it is decoded and the returned
// slice is nil.
func (c *Client) DeviceList(ctx context.Context, visit Visitor) ([]any, error) {
	devices, err := c.Get(ctx, "devices/all_devices.ekjson", ModeStream, visit)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return devices, nil
}

// SmartDeviceList lists devices active since q.Since, filtered by q.Regex and
// simplified to q.Fields. A nil q lists everything.
func (c *Client) SmartDeviceList(ctx context.Context, q *DeviceQuery, visit Visitor) ([]any, error) {
	if q == nil {
		q = &DeviceQuery{}
	}
	suffix := "devices/last-time/" + strconv.FormatInt(q.Since, 10) + "/devices.ekjson"
	devices, err := c.Post(ctx, suffix, NewCommand(q.Fields, q.Regex), ModeStream, visit)
	if err != nil {
		return nil, fmt.Errorf("listing devices since %d: %w", q.Since, err)
	}
	return devices, nil
}

// DevicesByMAC lists devices matching any of macs. Entries may be full MAC
// addresses or masked groups such as "AA:BB:CC:00:00:00/FF:FF:FF:00:00:00".
func (c *Client) DevicesByMAC(ctx context.Context, macs []string, fields Fields, visit Visitor) ([]any, error) {
	if macs == nil {
		macs = []string{}
	}
	cmd := NewCommand(fields, nil).Set("devices", macs)
	devices, err := c.Post(ctx, "devices/multimac/devices.ekjson", cmd, ModeStream, visit)
	if err != nil {
		return nil, fmt.Errorf("listing devices by MAC: %w", err)
	}
	return devices, nil
}

// Dot11ClientsOf lists the clients of the 802.11 access point with the given
// device key.
func (c *Client) Dot11ClientsOf(ctx context.Context, apKey string, fields Fields, visit Visitor) ([]any, error) {
	suffix := "phy/phy80211/clients-of/" + url.PathEscape(apKey) + "/clients.ekjson"
	devices, err := c.Post(ctx, suffix, NewCommand(fields, nil), ModeStream, visit)
	if err != nil {
		return nil, fmt.Errorf("listing clients of %q: %w", apKey, err)
	}
	return devices, nil
}

// AccessPointQuery narrows the 802.11 access point view.
type AccessPointQuery struct {
	// Since, when set, only returns access points active after this Kismet
	// timestamp, with the same relative form as DeviceQuery.Since. A set zero
	// is sent as given.
	Since *int64
	// Fields simplifies each access point to the listed fields.
	Fields Fields
	// Regex keeps only access points matching at least one term.
	Regex Regex
}

// Timestamp returns a pointer to ts for AccessPointQuery.Since.
func Timestamp(ts int64) *int64 {
	return &ts
}

// Dot11AccessPoints lists devices Kismet considers 802.11 access points.
// The last_time key is only sent when q.Since is set.
func (c *Client) Dot11AccessPoints(ctx context.Context, q *AccessPointQuery, visit Visitor) ([]any, error) {
	if q == nil {
		q = &AccessPointQuery{}
	}
	cmd := NewCommand(q.Fields, q.Regex)
	if q.Since != nil {
		cmd = cmd.Set("last_time", *q.Since)
	}
	devices, err := c.Post(ctx, "devices/views/phydot11_accesspoints/devices.ekjson", cmd, ModeStream, visit)
	if err != nil {
		return nil, fmt.Errorf("listing access points: %w", err)
	}
	return devices, nil
}

// DeviceByKey fetches one device by its Kismet key, which is unique within a
// server run.
//
// A non-empty field returns only the value at that path. A non-nil fields
// list simplifies the device instead and takes precedence over field.
func (c *Client) DeviceByKey(ctx context.Context, key, field string, fields Fields) (any, error) {
	suffix := "devices/by-key/" + url.PathEscape(key) + "/device.json"

	var (
		device any
		err    error
	)
	if fields != nil {
		device, err = c.postOne(ctx, suffix, NewCommand(fields, nil))
	} else {
		if field != "" {
			suffix += "/" + strings.TrimPrefix(field, "/")
		}
		device, err = c.getOne(ctx, suffix)
	}
	if err != nil {
		return nil, fmt.Errorf("getting device %q: %w", key, err)
	}
	return device, nil
}

// DeviceByMAC returns the devices of every phy type using mac. This is
// usually a single device, but addresses may collide across phy types, so
// the result is the server's array as decoded.
func (c *Client) DeviceByMAC(ctx context.Context, mac string, fields Fields) (any, error) {
	suffix := "devices/by-mac/" + url.PathEscape(mac) + "/devices.json"

	var (
		devices any
		err     error
	)
	if fields != nil {
		devices, err = c.postOne(ctx, suffix, NewCommand(fields, nil))
	} else {
		devices, err = c.getOne(ctx, suffix)
	}
	if err != nil {
		return nil, fmt.Errorf("getting devices with MAC %q: %w", mac, err)
	}
	return devices, nil
}
