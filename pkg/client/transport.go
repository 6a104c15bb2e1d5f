package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept as the message.
const maxErrorBody = 4096

// request describes one call to the Kismet API.
type request struct {
	method  string
	suffix  string
	command Command // form-encoded into the "json" field of a POST
	timeout time.Duration
}

func (c *Client) url(suffix string) string {
	return c.baseURL + "/" + strings.TrimPrefix(suffix, "/")
}

// send issues r and classifies the response. On success the session is
// updated from the response cookies and the open response is returned
// together with the cancel func of its timeout; the caller must close the
// body and call cancel once the body has been consumed.
func (c *Client) send(ctx context.Context, r request) (*http.Response, context.CancelFunc, error) {
	start := time.Now()
	target := c.url(r.suffix)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)

	req, err := c.newRequest(ctx, r, target)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	c.session.Attach(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		slog.Debug("HTTP request failed",
			slog.String("method", r.method),
			slog.String("path", r.suffix),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, nil, &RequestFailedError{URL: target, StatusCode: StatusUnreachable, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer cancel()
		defer resp.Body.Close()
		slog.Debug("HTTP request returned error",
			slog.String("method", r.method),
			slog.String("path", r.suffix),
			slog.Int("status", resp.StatusCode),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, nil, c.statusError(resp, target)
	}

	c.session.Update(resp)

	slog.Debug("HTTP request completed",
		slog.String("method", r.method),
		slog.String("path", r.suffix),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return resp, cancel, nil
}

func (c *Client) newRequest(ctx context.Context, r request, target string) (*http.Request, error) {
	if r.method != http.MethodPost {
		req, err := http.NewRequestWithContext(ctx, r.method, target, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		return req, nil
	}

	payload, err := r.command.encode()
	if err != nil {
		return nil, fmt.Errorf("encoding command: %w", err)
	}
	form := url.Values{"json": {payload}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, nil
}

// statusError converts a non-200 response into a LoginRequiredError or a
// RequestFailedError.
func (c *Client) statusError(resp *http.Response, target string) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return &LoginRequiredError{URL: target, StatusCode: resp.StatusCode}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &RequestFailedError{
		URL:        target,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

// bodyReader remembers the first read error so decode failures caused by the
// transport can be told apart from malformed content.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && b.err == nil {
		b.err = err
	}
	return n, err
}

// readError attaches the request's deadline to a body read error it caused,
// since the transport does not always report it as such.
func readError(resp *http.Response, err error) error {
	if resp.Request == nil {
		return err
	}
	if ctxErr := resp.Request.Context().Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
	return err
}

// fetch sends r and decodes the response body.
func (c *Client) fetch(ctx context.Context, r request, mode Mode, visit Visitor) ([]any, error) {
	resp, cancel, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	target := c.url(r.suffix)
	body := &bodyReader{r: resp.Body}

	objs, err := Decode(body, mode, visit)
	if err != nil {
		if body.err != nil {
			return nil, &RequestFailedError{
				URL:        target,
				StatusCode: resp.StatusCode,
				Message:    "reading response body",
				Err:        readError(resp, body.err),
			}
		}
		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			malformed.URL = target
			slog.Debug("failed to parse JSON",
				slog.String("path", r.suffix),
				slog.Int("raw_bytes", len(malformed.Raw)),
			)
		}
		return nil, err
	}
	return objs, nil
}

// fetchRaw sends r and returns the status and unprocessed body.
func (c *Client) fetchRaw(ctx context.Context, r request) (int, []byte, error) {
	resp, cancel, err := c.send(ctx, r)
	if err != nil {
		return 0, nil, err
	}
	defer cancel()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &RequestFailedError{
			URL:        c.url(r.suffix),
			StatusCode: resp.StatusCode,
			Message:    "reading response body",
			Err:        readError(resp, err),
		}
	}
	return resp.StatusCode, body, nil
}

// Get fetches suffix and decodes the response. Endpoint helpers cover the
// documented API; Get reaches anything else.
func (c *Client) Get(ctx context.Context, suffix string, mode Mode, visit Visitor) ([]any, error) {
	return c.fetch(ctx, request{
		method:  http.MethodGet,
		suffix:  suffix,
		timeout: c.readTimeout,
	}, mode, visit)
}

// Post posts cmd to suffix and decodes the response.
func (c *Client) Post(ctx context.Context, suffix string, cmd Command, mode Mode, visit Visitor) ([]any, error) {
	return c.fetch(ctx, request{
		method:  http.MethodPost,
		suffix:  suffix,
		command: cmd,
		timeout: c.readTimeout,
	}, mode, visit)
}

// getOne fetches a single-entity document endpoint.
func (c *Client) getOne(ctx context.Context, suffix string) (any, error) {
	objs, err := c.Get(ctx, suffix, ModeDocument, nil)
	if err != nil {
		return nil, err
	}
	return first(objs)
}

// postOne posts to a single-entity document endpoint.
func (c *Client) postOne(ctx context.Context, suffix string, cmd Command) (any, error) {
	objs, err := c.Post(ctx, suffix, cmd, ModeDocument, nil)
	if err != nil {
		return nil, err
	}
	return first(objs)
}

// command posts cmd to a *.cmd endpoint with the short command timeout.
func (c *Client) command(ctx context.Context, suffix string, cmd Command) ([]byte, error) {
	_, body, err := c.fetchRaw(ctx, request{
		method:  http.MethodPost,
		suffix:  suffix,
		command: cmd,
		timeout: c.commandTimeout,
	})
	return body, err
}

func first(objs []any) (any, error) {
	if len(objs) == 0 {
		return nil, ErrEmptyResponse
	}
	return objs[0], nil
}
