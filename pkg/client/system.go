package client

import (
	"context"
	"fmt"
	"net/http"
)

// SystemStatus retrieves the server status record.
func (c *Client) SystemStatus(ctx context.Context) (any, error) {
	status, err := c.getOne(ctx, "system/status.json")
	if err != nil {
		return nil, fmt.Errorf("getting system status: %w", err)
	}
	return status, nil
}

// CheckSession reports whether the current session (cookie or login) is
// accepted by the server. A valid session refreshes the cached cookie.
// Only a 401 yields false; any other failure is returned as an error.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	_, _, err := c.fetchRaw(ctx, request{
		method:  http.MethodGet,
		suffix:  "session/check_session",
		timeout: c.readTimeout,
	})
	if IsLoginRequired(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking session: %w", err)
	}
	return true, nil
}

// Login validates the configured credentials and caches the session cookie
// the server hands out. It returns a *LoginRequiredError when the
// credentials are rejected.
func (c *Client) Login(ctx context.Context) error {
	ok, err := c.CheckSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return &LoginRequiredError{URL: c.url("session/check_session"), StatusCode: http.StatusUnauthorized}
	}
	return nil
}
