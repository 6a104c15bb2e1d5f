package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/kismetrest/internal/mcp/tools"
)

// AddTool registers a tool with the server after checking its types the way
// the builtin tools are checked. It panics when the output type's zero value
// fails its own schema (a nil slice encodes as null where an array is
// required) or when either type holds values with their own JSON encoding,
// such as fieldpath.Field, whose inferred schema would not match the wire.
//
// Use this instead of [sdkmcp.AddTool] to get the additional checks.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
