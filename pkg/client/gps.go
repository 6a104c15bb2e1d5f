package client

import (
	"context"
	"fmt"
)

// Location fetches the current GPS fix.
func (c *Client) Location(ctx context.Context) (any, error) {
	loc, err := c.getOne(ctx, "gps/location.json")
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return loc, nil
}
