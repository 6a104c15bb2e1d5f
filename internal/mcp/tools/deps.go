package tools

import (
	"sync"

	"github.com/usestring/kismetrest/internal/config"
	"github.com/usestring/kismetrest/internal/query"
	"github.com/usestring/kismetrest/pkg/client"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Client *client.Client
	Config *config.Config
	Query  *query.Engine

	// mu serializes use of Client, which carries the session cookie and is
	// not safe for concurrent requests.
	mu sync.Mutex
}

// NewDeps creates tool dependencies around c.
func NewDeps(c *client.Client, cfg *config.Config) *Deps {
	return &Deps{
		Client: c,
		Config: cfg,
		Query:  query.NewEngine(),
	}
}

// Do runs fn with exclusive use of the Kismet client.
func (d *Deps) Do(fn func(c *client.Client) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.Client)
}

// deviceLimit clamps a requested device limit to the configured bounds.
func (d *Deps) deviceLimit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = d.Config.DefaultDeviceLimit
	}
	if d.Config.MaxDeviceLimit > 0 && limit > d.Config.MaxDeviceLimit {
		limit = d.Config.MaxDeviceLimit
	}
	return limit
}
