package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/kismetrest/pkg/fieldpath"
)

const (
	coffeeShopKey = "4202770D00000000_B8E8563A5B4C0000"
	signalPath    = "kismet.device.base.signal/kismet.common.signal.last_signal"
)

func TestDeviceList_CollectsAll(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	devices, err := c.DeviceList(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, devices, 7)
	assert.Equal(t, "/devices/all_devices.ekjson", srv.LastRequest().Path)
}

func TestSmartDeviceList_VisitorSeesEveryRecord(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	var names []any
	devices, err := c.SmartDeviceList(context.Background(), nil, func(obj any) error {
		names = append(names, obj.(map[string]any)["kismet.device.base.name"])
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, devices)
	require.Len(t, names, 7)
	assert.Equal(t, "CoffeeShop", names[0])
	assert.Equal(t, "Headphones", names[6])
}

func TestSmartDeviceList_AliasedFields(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	devices, err := c.SmartDeviceList(context.Background(), &DeviceQuery{
		Since: -300,
		Fields: Fields{
			fieldpath.F("kismet.device.base.macaddr"),
			fieldpath.As(signalPath, "signal"),
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, devices, 4)

	for _, dev := range devices {
		m := dev.(map[string]any)
		assert.Len(t, m, 2)
		assert.Contains(t, m, "kismet.device.base.macaddr")
		assert.Contains(t, m, "signal")
		assert.NotContains(t, m, signalPath)
	}
	assert.Equal(t, map[string]any{
		"kismet.device.base.macaddr": "4C:5B:3A:56:E8:B8",
		"signal":                     float64(-48),
	}, devices[0])

	req := srv.LastRequest()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/devices/last-time/-300/devices.ekjson", req.Path)
	assert.Equal(t, []any{
		"kismet.device.base.macaddr",
		[]any{signalPath, "signal"},
	}, req.Command["fields"])
	assert.NotContains(t, req.Command, "regex")
}

func TestSmartDeviceList_Regex(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	aps, err := c.SmartDeviceList(ctx, &DeviceQuery{
		Fields: Fields{fieldpath.F("kismet.device.base.name")},
		Regex:  Regex{fieldpath.Match("kismet.device.base.type", "^Wi-Fi AP$")},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"kismet.device.base.name": "CoffeeShop"},
		map[string]any{"kismet.device.base.name": "Library"},
	}, aps)
	assert.Equal(t, []any{
		[]any{"kismet.device.base.type", "^Wi-Fi AP$"},
	}, srv.LastRequest().Command["regex"])

	// Adding a term can only widen the result.
	wider, err := c.SmartDeviceList(ctx, &DeviceQuery{
		Fields: Fields{fieldpath.F("kismet.device.base.name")},
		Regex: Regex{
			fieldpath.Match("kismet.device.base.type", "^Wi-Fi AP$"),
			fieldpath.Match("kismet.device.base.name", "^Printer$"),
		},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, wider, 3)
}

func TestSmartDeviceList_EmptyFieldsSentAsEmptyList(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	_, err := c.SmartDeviceList(context.Background(), &DeviceQuery{Fields: Fields{}}, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields": []}`, srv.LastRequest().RawJSON)
}

func TestDevicesByMAC(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	devices, err := c.DevicesByMAC(ctx, []string{"4c:5b:3a:56:e8:b8", "06:05:04:03:02:01"}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, devices, 2)
	assert.Equal(t, "/devices/multimac/devices.ekjson", srv.LastRequest().Path)

	devices, err = c.DevicesByMAC(ctx, nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.Equal(t, []any{}, srv.LastRequest().Command["devices"])
}

func TestDot11ClientsOf(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	clients, err := c.Dot11ClientsOf(context.Background(), coffeeShopKey,
		Fields{fieldpath.F("kismet.device.base.macaddr")}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{
		map[string]any{"kismet.device.base.macaddr": "00:AA:44:33:22:11"},
		map[string]any{"kismet.device.base.macaddr": "DA:88:77:66:55:44"},
	}, clients)
	assert.Equal(t, "/phy/phy80211/clients-of/"+coffeeShopKey+"/clients.ekjson", srv.LastRequest().Path)
}

func TestDot11AccessPoints(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	aps, err := c.Dot11AccessPoints(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, aps, 2)
	assert.NotContains(t, srv.LastRequest().Command, "last_time")

	aps, err = c.Dot11AccessPoints(ctx, &AccessPointQuery{Since: Timestamp(-300)}, nil)
	require.NoError(t, err)
	assert.Len(t, aps, 1)
	assert.Equal(t, float64(-300), srv.LastRequest().Command["last_time"])

	aps, err = c.Dot11AccessPoints(ctx, &AccessPointQuery{Since: Timestamp(0)}, nil)
	require.NoError(t, err)
	assert.Len(t, aps, 2)
	cmd := srv.LastRequest().Command
	require.Contains(t, cmd, "last_time")
	assert.Equal(t, float64(0), cmd["last_time"])
}

func TestDeviceByKey(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	t.Run("whole device", func(t *testing.T) {
		dev, err := c.DeviceByKey(ctx, coffeeShopKey, "", nil)
		require.NoError(t, err)
		m, ok := dev.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "CoffeeShop", m["kismet.device.base.name"])
		assert.Equal(t, http.MethodGet, srv.LastRequest().Method)
	})

	t.Run("single field", func(t *testing.T) {
		name, err := c.DeviceByKey(ctx, coffeeShopKey, "kismet.device.base.name", nil)
		require.NoError(t, err)
		assert.Equal(t, "CoffeeShop", name)
		assert.Equal(t, "/devices/by-key/"+coffeeShopKey+"/device.json/kismet.device.base.name", srv.LastRequest().Path)
	})

	t.Run("simplified", func(t *testing.T) {
		dev, err := c.DeviceByKey(ctx, coffeeShopKey, "ignored", Fields{fieldpath.As("kismet.device.base.name", "name")})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "CoffeeShop"}, dev)
		assert.Equal(t, http.MethodPost, srv.LastRequest().Method)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := c.DeviceByKey(ctx, "nope", "", nil)
		var failed *RequestFailedError
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, http.StatusNotFound, failed.StatusCode)
	})
}

func TestDeviceByMAC(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	devices, err := c.DeviceByMAC(context.Background(), "06:05:04:03:02:01", Fields{fieldpath.F("kismet.device.base.name")})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"kismet.device.base.name": "Printer"}}, devices)
}

func TestSingleEntityEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (any, error)
		path string
	}{
		{"datasources", func() (any, error) { return c.Datasources(ctx) }, "/datasource/all_sources.json"},
		{"interfaces", func() (any, error) { return c.DatasourceInterfaces(ctx) }, "/datasource/list_interfaces.json"},
		{"location", func() (any, error) { return c.Location(ctx) }, "/gps/location.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.call()
			require.NoError(t, err)
			assert.NotNil(t, v)
			assert.Equal(t, tt.path, srv.LastRequest().Path)
		})
	}
}
