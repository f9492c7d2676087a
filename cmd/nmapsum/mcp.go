package main

import (
	"context"
	"os"

	"github.com/germanamz/nmapsum/pkg/tools/mcpserver"
)

// runMCP serves the summarizer as an MCP tool on stdio. Stdout carries the
// protocol, so logs go to stderr.
func runMCP(ctx context.Context, c commonFlags) error {
	d, err := buildDeps(c, logStderr)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	srv := mcpserver.New("nmapsum", version)
	srv.Register(d.sum.Tool(d.creds))

	d.log.Info("mcp server started", "version", version)

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}
