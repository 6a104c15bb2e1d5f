package mcpsrv

import (
	"github.com/usestring/kismetrest/internal/mcp/tools"
)

// Deps contains all dependencies available to custom tools.
// This gives custom tools access to the same Kismet client, configuration
// and JQ engine as builtin tools. Use Deps.Do to access the client, which
// serializes requests with the builtin tools.
type Deps = tools.Deps
