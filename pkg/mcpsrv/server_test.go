package mcpsrv

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/kismetrest/internal/config"
	"github.com/usestring/kismetrest/internal/kismettest"
	"github.com/usestring/kismetrest/pkg/client"
)

type countInput struct {
	Since int64 `json:"since,omitempty"`
}

type countOutput struct {
	Count int `json:"count"`
}

func newServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	now := time.Unix(1700000000, 0)
	ks := kismettest.New(t,
		kismettest.WithClock(func() time.Time { return now }),
		kismettest.WithDevices(kismettest.SampleDevices(now)...),
	)
	cfg := &config.Config{
		DefaultDeviceLimit: config.DefaultDeviceLimitValue,
		MaxDeviceLimit:     config.MaxDeviceLimitValue,
		LogLevel:           "error",
		LogFile:            filepath.Join(t.TempDir(), "mcp.log"),
	}
	opts = append([]Option{WithConfig(cfg)}, opts...)

	s, err := NewServer(client.New(client.WithBaseURL(ks.URL), client.WithSessionCache("")), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.0"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestNewServer_RequiresClient(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestNewServer_Builtins(t *testing.T) {
	s := newServer(t)
	assert.NotNil(t, s.Deps().Client)
	assert.Contains(t, toolNames(t, connect(t, s)), "kismet_devices")
}

func TestWithTool(t *testing.T) {
	s := newServer(t,
		WithoutBuiltinTools(),
		WithTool(&mcp.Tool{Name: "answer", Description: "Always 42"},
			func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countOutput, error) {
				return nil, countOutput{Count: 42}, nil
			}),
	)
	cs := connect(t, s)
	assert.Equal(t, []string{"answer"}, toolNames(t, cs))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "answer", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": float64(42)}, res.StructuredContent)
}

func TestWithDepsTool(t *testing.T) {
	s := newServer(t, WithDepsTool(&mcp.Tool{Name: "count_devices", Description: "Count devices"},
		func(d *Deps) func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countOutput, error) {
			return func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, countOutput, error) {
				var n int
				err := d.Do(func(c *client.Client) error {
					_, err := c.SmartDeviceList(ctx, &client.DeviceQuery{Since: in.Since, Fields: client.Fields{}},
						func(any) error { n++; return nil })
					return err
				})
				return nil, countOutput{Count: n}, err
			}
		}),
	)
	cs := connect(t, s)
	assert.Contains(t, toolNames(t, cs), "count_devices")
	assert.Contains(t, toolNames(t, cs), "kismet_system_status")

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "count_devices",
		Arguments: map[string]any{"since": -300},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": float64(4)}, res.StructuredContent)
}

func TestWithTool_PanicsOnNilSliceOutput(t *testing.T) {
	type badOutput struct {
		Devices []string `json:"devices"`
	}
	assert.Panics(t, func() {
		newServer(t, WithTool(&mcp.Tool{Name: "bad"},
			func(ctx context.Context, req *mcp.CallToolRequest, in countInput) (*mcp.CallToolResult, badOutput, error) {
				return nil, badOutput{}, nil
			}))
	})
}
