// Package mcpsrv provides an extensible MCP server for Kismet.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin Kismet tools. Users can extend the server with custom
// tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server with default configuration:
//
//	server, err := mcpsrv.NewServer(client.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type MyInput struct {
//	    Channel string `json:"channel"`
//	}
//
//	type MyOutput struct {
//	    Count int `json:"count"`
//	}
//
//	func myHandler(ctx context.Context, req *mcp.CallToolRequest, input MyInput) (*mcp.CallToolResult, MyOutput, error) {
//	    return nil, MyOutput{Count: 42}, nil
//	}
//
//	server, err := mcpsrv.NewServer(
//	    client.New(),
//	    mcpsrv.WithTool(&mcp.Tool{Name: "my_tool", Description: "My tool"}, myHandler),
//	)
//
// Tools built with [WithDepsTool] share the server's Kismet client through
// [Deps].
//
// # Configuration
//
// Configuration is read from the environment (KISMET_URI, KISMET_USERNAME,
// LOG_LEVEL and so on) unless [WithConfig] is given. Logging can also be
// overridden directly:
//
//	server, err := mcpsrv.NewServer(
//	    client.New(),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/kismet-mcp.log"),
//	)
package mcpsrv
