package kismettest

import (
	"encoding/json"
	"fmt"
	"time"
)

func defaultDocuments() map[string]any {
	return map[string]any{
		"/system/status.json": map[string]any{
			"kismet.system.devices.count": float64(4),
			"kismet.system.version":       "2023-07-R1",
			"kismet.system.timestamp.sec": float64(1700000000),
		},
		"/datasource/all_sources.json": []any{
			map[string]any{
				"kismet.datasource.uuid":      "5FE308BD-0000-0000-0000-00C0CA9B5D2A",
				"kismet.datasource.interface": "wlan1",
				"kismet.datasource.hopping":   float64(1),
			},
		},
		"/datasource/list_interfaces.json": []any{
			map[string]any{"kismet.datasource.probed.interface": "wlan1"},
		},
		"/gps/location.json": map[string]any{
			"kismet.common.location.valid": float64(1),
			"kismet.common.location.geopoint": []any{
				float64(-122.4194), float64(37.7749),
			},
		},
		"/alerts/all_alerts.json": map[string]any{
			"kismet.alert.timestamp": float64(1700000000),
			"kismet.alert.list": []any{
				map[string]any{"kismet.alert.header": "DEAUTHFLOOD"},
			},
		},
		"/messagebus/all_messages.json": map[string]any{
			"kismet.messagebus.timestamp": float64(1700000000),
			"kismet.messagebus.list":      []any{},
		},
	}
}

// Device decodes a JSON object into a device record. It panics on invalid
// JSON and is meant for test fixtures.
func Device(js string) map[string]any {
	var dev map[string]any
	if err := json.Unmarshal([]byte(js), &dev); err != nil {
		panic(fmt.Sprintf("kismettest: invalid device JSON: %v", err))
	}
	return dev
}

// SampleDevices returns a small mixed device table whose last_time values are
// relative to now: two access points, three 802.11 clients (one with a
// locally administered MAC), a bridged device and a Bluetooth device.
func SampleDevices(now time.Time) []map[string]any {
	ts := func(agoSec int64) int64 { return now.Unix() - agoSec }

	return []map[string]any{
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_B8E8563A5B4C0000",
			"kismet.device.base.macaddr": "4C:5B:3A:56:E8:B8",
			"kismet.device.base.name": "CoffeeShop",
			"kismet.device.base.type": "Wi-Fi AP",
			"kismet.device.base.crypt": "WPA2-PSK",
			"kismet.device.base.channel": "6",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -48,
				"kismet.common.signal.last_noise": -95
			},
			"dot11.device": {
				"dot11.device.advertised_ssid_map": {
					"17a3": {"dot11.advertisedssid.ssid": "CoffeeShop"},
					"9e01": {"dot11.advertisedssid.ssid": "CoffeeShop-Guest"}
				}
			}
		}`, ts(30))),
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_0A1B2C3D4E5F0000",
			"kismet.device.base.macaddr": "5F:4E:3D:2C:1B:0A",
			"kismet.device.base.name": "Library",
			"kismet.device.base.type": "Wi-Fi AP",
			"kismet.device.base.crypt": "Open",
			"kismet.device.base.channel": "11",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -71,
				"kismet.common.signal.last_noise": -97
			},
			"dot11.device": {
				"dot11.device.advertised_ssid_map": {
					"44c0": {"dot11.advertisedssid.ssid": "PublicLibrary"}
				}
			}
		}`, ts(1200))),
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_11223344AA000000",
			"kismet.device.base.macaddr": "00:AA:44:33:22:11",
			"kismet.device.base.name": "00:AA:44:33:22:11",
			"kismet.device.base.type": "Wi-Fi Client",
			"kismet.device.base.crypt": "None",
			"kismet.device.base.channel": "6",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -60,
				"kismet.common.signal.last_noise": -95
			},
			"dot11.device": {"dot11.device.last_bssid": "4C:5B:3A:56:E8:B8"}
		}`, ts(60))),
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_55667788DA000000",
			"kismet.device.base.macaddr": "DA:88:77:66:55:44",
			"kismet.device.base.name": "DA:88:77:66:55:44",
			"kismet.device.base.type": "Wi-Fi Client",
			"kismet.device.base.crypt": "None",
			"kismet.device.base.channel": "6",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -66,
				"kismet.common.signal.last_noise": -95
			},
			"dot11.device": {"dot11.device.last_bssid": "4C:5B:3A:56:E8:B8"}
		}`, ts(90))),
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_99AABBCC0C000000",
			"kismet.device.base.macaddr": "0C:CC:BB:AA:99:88",
			"kismet.device.base.name": "0C:CC:BB:AA:99:88",
			"kismet.device.base.type": "Wi-Fi Client",
			"kismet.device.base.crypt": "None",
			"kismet.device.base.channel": "11",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -80,
				"kismet.common.signal.last_noise": -97
			},
			"dot11.device": {"dot11.device.last_bssid": "5F:4E:3D:2C:1B:0A"}
		}`, ts(1800))),
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_0102030405060000",
			"kismet.device.base.macaddr": "06:05:04:03:02:01",
			"kismet.device.base.name": "Printer",
			"kismet.device.base.type": "Wi-Fi Bridged",
			"kismet.device.base.crypt": "WPA2-PSK",
			"kismet.device.base.channel": "6",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -75,
				"kismet.common.signal.last_noise": -95
			}
		}`, ts(120))),
		Device(fmt.Sprintf(`{
			"kismet.device.base.key": "4202770D00000000_A1B2C3D4E5F60000",
			"kismet.device.base.macaddr": "F6:E5:D4:C3:B2:A1",
			"kismet.device.base.name": "Headphones",
			"kismet.device.base.type": "BTLE",
			"kismet.device.base.crypt": "None",
			"kismet.device.base.channel": "37",
			"kismet.device.base.last_time": %d,
			"kismet.device.base.signal": {
				"kismet.common.signal.last_signal": -55,
				"kismet.common.signal.last_noise": 0
			}
		}`, ts(7200))),
	}
}
