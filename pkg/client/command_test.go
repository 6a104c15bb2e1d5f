package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/kismetrest/internal/kismettest"
	"github.com/usestring/kismetrest/pkg/fieldpath"
)

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		regex  Regex
		want   string
	}{
		{"nothing", nil, nil, `{}`},
		{"empty fields", Fields{}, nil, `{"fields": []}`},
		{"empty regex", nil, Regex{}, `{"regex": []}`},
		{
			"both",
			Fields{fieldpath.F("kismet.device.base.name")},
			Regex{fieldpath.Match("kismet.device.base.type", "AP")},
			`{"fields": ["kismet.device.base.name"], "regex": [["kismet.device.base.type", "AP"]]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCommand(tt.fields, tt.regex).encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestCommand_SetAndNilEncode(t *testing.T) {
	cmd := NewCommand(nil, nil).Set("last_time", -60).Set("devices", []string{"AA:BB:CC:DD:EE:FF"})
	got, err := cmd.encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_time": -60, "devices": ["AA:BB:CC:DD:EE:FF"]}`, got)

	var nilCmd Command
	got, err = nilCmd.encode()
	require.NoError(t, err)
	assert.Empty(t, got)
}

const sourceUUID = "5FE308BD-0000-0000-0000-00C0CA9B5D2A"

func TestDatasourceCommands(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()
	setChannel := "/datasource/by-uuid/" + sourceUUID + "/set_channel.cmd"

	require.NoError(t, c.SetChannel(ctx, sourceUUID, "6HT40+"))
	assert.Equal(t, setChannel, srv.LastRequest().Path)
	assert.Equal(t, map[string]any{"channel": "6HT40+"}, srv.LastRequest().Command)

	require.NoError(t, c.SetHopRate(ctx, sourceUUID, 5))
	assert.Equal(t, map[string]any{"rate": float64(5)}, srv.LastRequest().Command)

	require.NoError(t, c.SetHopChannels(ctx, sourceUUID, 2.5, []string{"1", "6", "11"}))
	assert.Equal(t, map[string]any{
		"rate":     2.5,
		"channels": []any{"1", "6", "11"},
	}, srv.LastRequest().Command)

	require.NoError(t, c.SetHop(ctx, sourceUUID))
	assert.Equal(t, "/datasource/by-uuid/"+sourceUUID+"/set_hop.cmd", srv.LastRequest().Path)
	assert.Equal(t, map[string]any{"hop": true}, srv.LastRequest().Command)

	require.NoError(t, c.AddDatasource(ctx, "wlan1:name=outside"))
	assert.Equal(t, "/datasource/add_source.cmd", srv.LastRequest().Path)
	assert.Equal(t, map[string]any{"definition": "wlan1:name=outside"}, srv.LastRequest().Command)
}

func TestCommands_RequireLogin(t *testing.T) {
	srv := newTestServer(t, kismettest.WithLogin("kismet", "secret"))
	ctx := context.Background()

	anon, _ := newTestClient(t, srv)
	err := anon.SetChannel(ctx, sourceUUID, "6")
	assert.True(t, IsLoginRequired(err))

	admin, _ := newTestClient(t, srv, WithLogin("kismet", "secret"))
	require.NoError(t, admin.SetChannel(ctx, sourceUUID, "6"))
	assert.Equal(t, "kismet", srv.LastRequest().User)
}

func TestDefineAlert(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	require.NoError(t, c.DefineAlert(context.Background(), AlertDefinition{
		Name:        "ROGUEAP",
		Description: "Unexpected access point",
	}))
	req := srv.LastRequest()
	assert.Equal(t, "/alerts/definitions/define_alert.cmd", req.Path)
	assert.Equal(t, map[string]any{
		"name":        "ROGUEAP",
		"description": "Unexpected access point",
		"throttle":    "10/min",
		"burst":       "1/sec",
	}, req.Command)
}

func TestRaiseAlert(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)

	require.NoError(t, c.RaiseAlert(context.Background(), Alert{
		Name:  "ROGUEAP",
		Text:  "seen near the lobby",
		BSSID: "4C:5B:3A:56:E8:B8",
	}))
	req := srv.LastRequest()
	assert.Equal(t, "/alerts/raise_alert.cmd", req.Path)
	assert.Equal(t, map[string]any{
		"name":  "ROGUEAP",
		"text":  "seen near the lobby",
		"bssid": "4C:5B:3A:56:E8:B8",
	}, req.Command)
}

func TestAlertsAndMessages(t *testing.T) {
	srv := newTestServer(t)
	c, _ := newTestClient(t, srv)
	ctx := context.Background()

	alerts, err := c.Alerts(ctx, time.Unix(1700000000, 250000))
	require.NoError(t, err)
	assert.Contains(t, alerts, "kismet.alert.list")
	assert.Equal(t, "/alerts/last-time/1700000000.000250/alerts.json", srv.LastRequest().Path)

	_, err = c.Messages(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "/messagebus/last-time/0.0/messages.json", srv.LastRequest().Path)
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "0.0", timestamp(time.Time{}))
	assert.Equal(t, "1700000000.000000", timestamp(time.Unix(1700000000, 0)))
	assert.Equal(t, "1700000000.123456", timestamp(time.Unix(1700000000, 123456789)))
}
