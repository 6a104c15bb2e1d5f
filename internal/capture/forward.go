package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/usestring/kismetrest/internal/query"
	"github.com/usestring/kismetrest/internal/schema"
)

// DefaultForwardTimeout bounds one POST to the collection API.
const DefaultForwardTimeout = 10 * time.Second

// ErrNoDestination is returned by Forward when no API URL is configured.
var ErrNoDestination = errors.New("capture: no API URL configured")

// ForwardError is returned when the collection API answers with a non-2xx
// status.
type ForwardError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("capture: forwarding to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Forwarder validates reports against the Report schema and posts them as
// JSON to the collection API.
type Forwarder struct {
	url        string
	httpClient *http.Client
	timeout    time.Duration
	validator  *schema.Validator
}

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

// WithForwardHTTPClient sets the HTTP client used for posting.
func WithForwardHTTPClient(hc *http.Client) ForwarderOption {
	return func(f *Forwarder) {
		f.httpClient = hc
	}
}

// WithForwardTimeout bounds each POST.
func WithForwardTimeout(d time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewForwarder creates a forwarder posting to url. An empty url is allowed;
// Forward then only validates and returns ErrNoDestination.
func NewForwarder(url string, opts ...ForwarderOption) (*Forwarder, error) {
	validator, err := schema.ForType(&Report{})
	if err != nil {
		return nil, fmt.Errorf("building report schema: %w", err)
	}

	f := &Forwarder{
		url:        url,
		httpClient: http.DefaultClient,
		timeout:    DefaultForwardTimeout,
		validator:  validator,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// URL returns the destination, or "" when none is configured.
func (f *Forwarder) URL() string {
	return f.url
}

// Validate checks r against the Report schema.
func (f *Forwarder) Validate(r *Report) error {
	v, err := query.Normalize(r)
	if err != nil {
		return err
	}
	return f.validator.ValidateValue(v).Err()
}

// Forward validates r and posts it.
func (f *Forwarder) Forward(ctx context.Context, r *Report) error {
	if err := f.Validate(r); err != nil {
		return err
	}
	if f.url == "" {
		return ErrNoDestination
	}

	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("forwarding report: %w", err)
	}
	defer resp.Body.Close()

	slog.Debug("forwarded report",
		slog.String("url", f.url),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &ForwardError{
			URL:        f.url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}
	return nil
}
