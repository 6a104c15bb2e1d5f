package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// StatusUnreachable is the StatusCode of a RequestFailedError raised when no
// HTTP response was received at all (connection refused, DNS failure,
// timeout). It never collides with a real HTTP status.
const StatusUnreachable = -1

// LoginRequiredError is returned when the server answers 401. The caller has
// no valid session: log in, or carry on without admin-only data.
type LoginRequiredError struct {
	URL        string
	StatusCode int
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("kismet: login required for %s (status %d)", e.URL, e.StatusCode)
}

// RequestFailedError is returned for any other non-200 status and for
// transport failures, in which case StatusCode is StatusUnreachable and Err
// holds the underlying error. A failure while reading a 200 body keeps
// StatusCode 200, sets Message to "reading response body" and holds the read
// error in Err; use Timeout to tell a deadline apart from other failures.
type RequestFailedError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestFailedError) Error() string {
	if e.StatusCode == StatusUnreachable {
		return fmt.Sprintf("kismet: request to %s failed: %v", e.URL, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("kismet: request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("kismet: request to %s failed with status %d", e.URL, e.StatusCode)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Unreachable reports whether the server was never reached.
func (e *RequestFailedError) Unreachable() bool {
	return e.StatusCode == StatusUnreachable
}

// Timeout reports whether the request ran out of time, either before a
// response arrived or while its body was being read.
func (e *RequestFailedError) Timeout() bool {
	if e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// MalformedResponseError is returned when a body that should be JSON or
// ekjson does not parse. Raw holds the offending document or line.
type MalformedResponseError struct {
	URL string
	Raw []byte
	Err error
}

func (e *MalformedResponseError) Error() string {
	const maxRaw = 128
	raw := e.Raw
	suffix := ""
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
		suffix = "..."
	}
	return fmt.Sprintf("kismet: malformed response from %s: %v (%q%s)", e.URL, e.Err, raw, suffix)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ErrEmptyResponse is returned by single-entity lookups when the server sent
// no object at all. Missing entities are reported through the HTTP status,
// so an empty body is a protocol violation.
var ErrEmptyResponse = errors.New("kismet: empty response for single-entity request")

// IsLoginRequired reports whether err is, or wraps, a LoginRequiredError.
func IsLoginRequired(err error) bool {
	var target *LoginRequiredError
	return errors.As(err, &target)
}

// IsRequestFailed reports whether err is, or wraps, a RequestFailedError.
func IsRequestFailed(err error) bool {
	var target *RequestFailedError
	return errors.As(err, &target)
}

// IsMalformedResponse reports whether err is, or wraps, a
// MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}
