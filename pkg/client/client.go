package client

import (
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the default base URL of a local Kismet server.
const DefaultBaseURL = "http://127.0.0.1:2501"

// DefaultSessionCachePath is where the session cookie is cached by default.
// A leading "~" is expanded to the user's home directory.
const DefaultSessionCachePath = "~/.kismet_session"

// Default request timeouts.
const (
	DefaultReadTimeout    = 60 * time.Second
	DefaultCommandTimeout = 2 * time.Second
)

// Client is a Kismet REST API client.
//
// A Client owns its session state and is meant to be used by one goroutine
// at a time. Run one Client per goroutine, or serialize access, when issuing
// requests concurrently.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	readTimeout    time.Duration
	commandTimeout time.Duration

	sessionPath string
	username    string
	password    string
	hasLogin    bool

	session *Session
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets the Kismet server URI, including scheme, host and port.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogin sets HTTP basic-auth credentials sent with every request.
// Administrative endpoints require a login or a valid session cookie.
func WithLogin(username, password string) Option {
	return func(c *Client) {
		c.username = username
		c.password = password
		c.hasLogin = true
	}
}

// WithSessionCache sets the file used to persist the session cookie.
// An empty path disables persistence.
func WithSessionCache(path string) Option {
	return func(c *Client) {
		c.sessionPath = path
	}
}

// WithReadTimeout bounds GET requests and streamed POST queries, including
// the time spent decoding the response body.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.readTimeout = d
		}
	}
}

// WithCommandTimeout bounds lightweight command posts (*.cmd endpoints).
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.commandTimeout = d
		}
	}
}

// New creates a new Kismet API client. The session cache is read once here;
// a missing or unreadable cache simply starts without a session.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		httpClient:     http.DefaultClient,
		readTimeout:    DefaultReadTimeout,
		commandTimeout: DefaultCommandTimeout,
		sessionPath:    DefaultSessionCachePath,
	}
	for _, opt := range opts {
		opt(c)
	}

	var creds *Credentials
	if c.hasLogin {
		creds = &Credentials{Username: c.username, Password: c.password}
	}
	c.session = LoadSession(c.sessionPath, creds)
	return c
}

// BaseURL returns the server URI requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session returns the client's session state.
func (c *Client) Session() *Session {
	return c.session
}
