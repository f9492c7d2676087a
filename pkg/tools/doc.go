// Package tools exposes nmapsum operations to other programs.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/nmapsum/pkg/tools/mcpserver]: Tool type and an MCP server using the official MCP Go SDK (github.com/modelcontextprotocol/go-sdk)
package tools
