package capture

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/kismetrest/internal/kismettest"
	"github.com/usestring/kismetrest/internal/query"
	"github.com/usestring/kismetrest/pkg/client"
)

var testNow = time.Unix(1700000000, 0)

func fixedClock() time.Time { return testNow }

func newTestServer(t *testing.T, opts ...kismettest.Option) *kismettest.Server {
	t.Helper()
	opts = append([]kismettest.Option{
		kismettest.WithClock(fixedClock),
		kismettest.WithDevices(kismettest.SampleDevices(testNow)...),
	}, opts...)
	return kismettest.New(t, opts...)
}

func clientFactory(t *testing.T, srv *kismettest.Server) ClientFactory {
	t.Helper()
	cache := filepath.Join(t.TempDir(), "session")
	return func() *client.Client {
		return client.New(client.WithBaseURL(srv.URL), client.WithSessionCache(cache))
	}
}

func names(devices []Device) []string {
	out := make([]string, len(devices))
	for i, d := range devices {
		out[i] = d.Name
	}
	return out
}

func TestCollector_AccessPoints(t *testing.T) {
	srv := newTestServer(t)
	newClient := clientFactory(t, srv)
	c := NewCollector(newClient, WithClock(fixedClock))

	aps, err := c.AccessPoints(context.Background(), newClient())
	require.NoError(t, err)
	require.Len(t, aps, 2)

	assert.Equal(t, Device{
		Name:               "CoffeeShop",
		Type:               "Wi-Fi AP",
		MACAddress:         "4C:5B:3A:56:E8:B8",
		SignalStrength:     -48,
		SignalToNoiseRatio: -95,
		Channel:            "6",
		Age:                30,
	}, aps[0])
	assert.Equal(t, "Library", aps[1].Name)
	assert.Equal(t, int64(1200), aps[1].Age)

	req := srv.LastRequest()
	assert.Equal(t, "/devices/last-time/0/devices.ekjson", req.Path)
	assert.Equal(t, []any{[]any{"kismet.device.base.type", "^Wi-Fi AP$"}}, req.Command["regex"])
}

func TestCollector_AccessPointsKeepsStrongestOfRecent(t *testing.T) {
	var devices []map[string]any
	// 20 access points: the older ones are the strongest, but only the 15
	// most recent are candidates.
	for i := 0; i < 20; i++ {
		devices = append(devices, map[string]any{
			"kismet.device.base.name":      "ap" + string(rune('a'+i)),
			"kismet.device.base.type":      "Wi-Fi AP",
			"kismet.device.base.macaddr":   "00:00:00:00:00:00",
			"kismet.device.base.last_time": float64(testNow.Unix() - int64(i*10)),
			"kismet.device.base.signal": map[string]any{
				"kismet.common.signal.last_signal": float64(-90 + i),
				"kismet.common.signal.last_noise":  float64(-95),
			},
		})
	}
	srv := kismettest.New(t, kismettest.WithClock(fixedClock), kismettest.WithDevices(devices...))
	newClient := clientFactory(t, srv)
	c := NewCollector(newClient, WithClock(fixedClock))

	aps, err := c.AccessPoints(context.Background(), newClient())
	require.NoError(t, err)
	// Candidates are ap0..ap14 (ages 0..140); the strongest six are the
	// oldest of those.
	assert.Equal(t, []string{"apo", "apn", "apm", "apl", "apk", "apj"}, names(aps))
	for _, ap := range aps {
		assert.LessOrEqual(t, ap.Age, int64(140))
	}
}

func TestCollector_ClientCounts(t *testing.T) {
	srv := newTestServer(t)
	newClient := clientFactory(t, srv)
	c := NewCollector(newClient, WithClock(fixedClock))

	counts, err := c.ClientCounts(context.Background(), newClient())
	require.NoError(t, err)
	assert.Equal(t, ClientCounts{
		FilteredLast5Mins: 1, // DA:88:... is locally administered
		FilteredLastHour:  2,
		ClientsLast5Mins:  3, // includes the bridged printer
		ClientsLastHour:   4,
	}, counts)

	var paths []string
	for _, req := range srv.Requests() {
		paths = append(paths, req.Path)
	}
	assert.Equal(t, []string{
		"/devices/last-time/-300/devices.ekjson",
		"/devices/last-time/-3600/devices.ekjson",
		"/devices/last-time/-300/devices.ekjson",
		"/devices/last-time/-3600/devices.ekjson",
	}, paths)
}

func TestCollector_RecentDevices(t *testing.T) {
	srv := newTestServer(t)
	newClient := clientFactory(t, srv)
	c := NewCollector(newClient, WithClock(fixedClock))

	devices, err := c.RecentDevices(context.Background(), newClient())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CoffeeShop",
		"00:AA:44:33:22:11",
		"DA:88:77:66:55:44",
		"Printer",
		"Library",
		"0C:CC:BB:AA:99:88",
	}, names(devices))
	assert.Equal(t, "WPA2-PSK", devices[0].Crypt)
	for i := 1; i < len(devices); i++ {
		assert.LessOrEqual(t, devices[i-1].Age, devices[i].Age)
	}
}

func TestCollector_RecentDevicesFilter(t *testing.T) {
	srv := newTestServer(t)
	newClient := clientFactory(t, srv)
	prog, err := query.NewEngine().Compile(`.type == "Wi-Fi Client" and .signalStrength > -70`)
	require.NoError(t, err)
	c := NewCollector(newClient, WithClock(fixedClock), WithDeviceFilter(prog), WithRecentWindow(10*time.Minute))

	devices, err := c.RecentDevices(context.Background(), newClient())
	require.NoError(t, err)
	assert.Equal(t, []string{"00:AA:44:33:22:11", "DA:88:77:66:55:44"}, names(devices))
	assert.Equal(t, "/devices/last-time/-600/devices.ekjson", srv.LastRequest().Path)
}

func TestCollector_Collect(t *testing.T) {
	srv := newTestServer(t)
	c := NewCollector(clientFactory(t, srv), WithClock(fixedClock))

	report, err := c.Collect(context.Background(), "north-gate")
	require.NoError(t, err)
	assert.Equal(t, "north-gate", report.Name)
	assert.Len(t, report.AP, 2)
	assert.Len(t, report.Devices, 6)
	assert.Equal(t, 4, report.ClientCount.ClientsLastHour)
	assert.Len(t, srv.Requests(), 6)
}

func TestCollector_CollectFailure(t *testing.T) {
	srv := newTestServer(t)
	srv.Override("/devices/last-time/0/devices.ekjson", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tracker busy", http.StatusServiceUnavailable)
	})
	c := NewCollector(clientFactory(t, srv), WithClock(fixedClock))

	_, err := c.Collect(context.Background(), "north-gate")
	var failed *client.RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, http.StatusServiceUnavailable, failed.StatusCode)
	assert.Equal(t, "tracker busy", failed.Message)
}

func TestCollector_Malformed(t *testing.T) {
	srv := newTestServer(t)
	srv.Override("/devices/last-time/0/devices.ekjson", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{\"name\": \"x\"\nnot json\n"))
	})
	newClient := clientFactory(t, srv)
	c := NewCollector(newClient, WithClock(fixedClock))

	_, err := c.AccessPoints(context.Background(), newClient())
	assert.True(t, client.IsMalformedResponse(err))
}

func TestDeviceFrom(t *testing.T) {
	dev, err := deviceFrom(map[string]any{
		"name":           "Printer",
		"macAddress":     "06:05:04:03:02:01",
		"signalStrength": float64(-75),
		"channel":        float64(6),
		"age":            float64(testNow.Unix()) - 119.6,
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(120), dev.Age)
	assert.Equal(t, "6", dev.Channel)
	assert.Equal(t, -75, dev.SignalStrength)
	assert.Empty(t, dev.Crypt)

	_, err = deviceFrom([]any{"not", "an", "object"}, testNow)
	assert.ErrorIs(t, err, errUnexpectedRecord)
}

func TestGloballyAdministered(t *testing.T) {
	tests := []struct {
		mac  string
		want bool
	}{
		{"00:AA:44:33:22:11", true},
		{"0C:CC:BB:AA:99:88", true},
		{"DA:88:77:66:55:44", false},
		{"02:00:00:00:00:01", false},
		{"F6:E5:D4:C3:B2:A1", false},
		{"4c:5b:3a:56:e8:b8", true},
		{"", false},
		{"0", false},
		{"0Z:00:00:00:00:00", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, globallyAdministered(tt.mac), tt.mac)
	}
}

func TestSince(t *testing.T) {
	assert.Equal(t, int64(-300), since(5*time.Minute))
	assert.Equal(t, int64(-3600), since(time.Hour))
}
