package client

import (
	"context"
	"fmt"
	"net/url"
)

// Datasources lists every configured capture source.
func (c *Client) Datasources(ctx context.Context) (any, error) {
	sources, err := c.getOne(ctx, "datasource/all_sources.json")
	if err != nil {
		return nil, fmt.Errorf("listing datasources: %w", err)
	}
	return sources, nil
}

// DatasourceInterfaces lists interfaces the server could capture from.
func (c *Client) DatasourceInterfaces(ctx context.Context) (any, error) {
	ifaces, err := c.getOne(ctx, "datasource/list_interfaces.json")
	if err != nil {
		return nil, fmt.Errorf("listing datasource interfaces: %w", err)
	}
	return ifaces, nil
}

func datasourceCmd(uuid, name string) string {
	return "datasource/by-uuid/" + url.PathEscape(uuid) + "/" + name
}

// SetChannel locks a source to one channel. Complex channels such as
// "6HT40+" are accepted. Requires a login.
func (c *Client) SetChannel(ctx context.Context, uuid, channel string) error {
	if _, err := c.command(ctx, datasourceCmd(uuid, "set_channel.cmd"), Command{"channel": channel}); err != nil {
		return fmt.Errorf("setting channel of source %s: %w", uuid, err)
	}
	return nil
}

// SetHopRate changes how fast a source hops without changing its channels.
// Requires a login.
func (c *Client) SetHopRate(ctx context.Context, uuid string, rate float64) error {
	if _, err := c.command(ctx, datasourceCmd(uuid, "set_channel.cmd"), Command{"rate": rate}); err != nil {
		return fmt.Errorf("setting hop rate of source %s: %w", uuid, err)
	}
	return nil
}

// SetHopChannels makes a source hop over channels at rate hops per second.
// Requires a login.
func (c *Client) SetHopChannels(ctx context.Context, uuid string, rate float64, channels []string) error {
	cmd := Command{"rate": rate, "channels": channels}
	if _, err := c.command(ctx, datasourceCmd(uuid, "set_channel.cmd"), cmd); err != nil {
		return fmt.Errorf("setting hop channels of source %s: %w", uuid, err)
	}
	return nil
}

// SetHop puts a source back into hopping with its existing hop settings.
// Requires a login.
func (c *Client) SetHop(ctx context.Context, uuid string) error {
	if _, err := c.command(ctx, datasourceCmd(uuid, "set_hop.cmd"), Command{"hop": true}); err != nil {
		return fmt.Errorf("enabling hopping on source %s: %w", uuid, err)
	}
	return nil
}

// AddDatasource opens a new source from a Kismet source definition such as
// "wlan1:name=outside". Requires a login.
func (c *Client) AddDatasource(ctx context.Context, definition string) error {
	if _, err := c.command(ctx, "datasource/add_source.cmd", Command{"definition": definition}); err != nil {
		return fmt.Errorf("adding datasource %q: %w", definition, err)
	}
	return nil
}
