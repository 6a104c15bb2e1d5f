// Package capture periodically summarizes what a Kismet sensor sees and
// forwards the summary to a collection API.
//
// A Collector gathers three views concurrently, each over its own client:
// the strongest recently seen access points, client counts over two time
// windows, and every device active within the recent window. A Runner waits
// for the sensor to come up, collects on a fixed interval, and restarts the
// sensor through a hook when it stops answering.
package capture

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/usestring/kismetrest/pkg/fieldpath"
)

// Device is the forwarded summary of one device.
type Device struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	MACAddress         string `json:"macAddress"`
	SignalStrength     int    `json:"signalStrength"`
	SignalToNoiseRatio int    `json:"signalToNoiseRatio"`
	Channel            string `json:"channel"`
	Age                int64  `json:"age"` // seconds since the device was last seen
	Crypt              string `json:"crypt,omitempty"`
}

// ClientCounts counts 802.11 clients over a short and a long window.
// Filtered counts only include plain clients with globally administered
// MAC addresses, which excludes most randomized probe addresses.
type ClientCounts struct {
	FilteredLast5Mins int `json:"filtered_num_last_5_mins"`
	FilteredLastHour  int `json:"filtered_num_last_hour"`
	ClientsLast5Mins  int `json:"num_clients_last_5_mins"`
	ClientsLastHour   int `json:"num_clients_last_hour"`
}

// Report is one collection cycle as forwarded to the API.
type Report struct {
	Name        string       `json:"name"`
	AP          []Device     `json:"ap"`
	ClientCount ClientCounts `json:"client_count"`
	Devices     []Device     `json:"devices"`
}

const (
	fieldName    = "kismet.device.base.name"
	fieldType    = "kismet.device.base.type"
	fieldMAC     = "kismet.device.base.macaddr"
	fieldCrypt   = "kismet.device.base.crypt"
	fieldChannel = "kismet.device.base.channel"
	fieldLast    = "kismet.device.base.last_time"
	fieldSignal  = "kismet.device.base.signal/kismet.common.signal.last_signal"
	fieldNoise   = "kismet.device.base.signal/kismet.common.signal.last_noise"
)

var (
	apFields = fieldpath.Fields{
		fieldpath.As(fieldName, "name"),
		fieldpath.As(fieldType, "type"),
		fieldpath.As(fieldMAC, "macAddress"),
		fieldpath.As(fieldSignal, "signalStrength"),
		fieldpath.As(fieldLast, "age"),
		fieldpath.As(fieldChannel, "channel"),
		fieldpath.As(fieldNoise, "signalToNoiseRatio"),
	}
	clientFields = fieldpath.Fields{
		fieldpath.As(fieldMAC, "macAddress"),
		fieldpath.As(fieldType, "type"),
		fieldpath.As(fieldLast, "age"),
	}
	deviceFields = fieldpath.Fields{
		fieldpath.As(fieldName, "name"),
		fieldpath.As(fieldType, "type"),
		fieldpath.As(fieldCrypt, "crypt"),
		fieldpath.As(fieldSignal, "signalStrength"),
		fieldpath.As(fieldNoise, "signalToNoiseRatio"),
		fieldpath.As(fieldChannel, "channel"),
		fieldpath.As(fieldLast, "age"),
		fieldpath.As(fieldMAC, "macAddress"),
	}

	apRegex         = fieldpath.Regex{fieldpath.Match(fieldType, "^Wi-Fi AP$")}
	clientRegex     = fieldpath.Regex{fieldpath.Match(fieldType, "^Wi-Fi Client$")}
	wideClientRegex = fieldpath.Regex{fieldpath.Match(fieldType, "^Wi-Fi Client|Wi-Fi Bridged|Wi-Fi Device$")}
)

var errUnexpectedRecord = errors.New("capture: device record is not an object")

// deviceFrom converts a simplified device record into a summary. The "age"
// key carries the last-seen timestamp and is turned into seconds before now.
func deviceFrom(rec any, now time.Time) (Device, error) {
	m, ok := rec.(map[string]any)
	if !ok {
		return Device{}, fmt.Errorf("%w: %T", errUnexpectedRecord, rec)
	}

	nowSec := float64(now.UnixNano()) / float64(time.Second)
	return Device{
		Name:               stringField(m, "name"),
		Type:               stringField(m, "type"),
		MACAddress:         stringField(m, "macAddress"),
		SignalStrength:     int(numberField(m, "signalStrength")),
		SignalToNoiseRatio: int(numberField(m, "signalToNoiseRatio")),
		Channel:            stringField(m, "channel"),
		Age:                int64(math.Round(nowSec - numberField(m, "age"))),
		Crypt:              stringField(m, "crypt"),
	}, nil
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func numberField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// globallyAdministered reports whether mac has the universal/local bit of
// its first octet cleared. Randomized addresses set that bit.
func globallyAdministered(mac string) bool {
	if len(mac) < 3 {
		return false
	}
	nibble, err := strconv.ParseUint(mac[1:2], 16, 8)
	if err != nil {
		return false
	}
	return nibble&0x2 == 0
}
