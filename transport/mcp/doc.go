// Package mcp provides a Model Context Protocol server for the knight mover.
//
// The mcp package implements:
//   - MCP tools for AI agent integration
//   - A thin client that proxies every tool call to the REST API
//   - Text formatting of runs, step traces and boards
//
// MCP Tools:
//   - execute_commands: Run a command list on a catalog or inline board
//   - fetch_and_run: Fetch board and commands documents by URL and run them
//   - get_run: Get a stored run with its step trace
//   - list_runs: List stored runs, optionally filtered by board
//   - list_boards: List catalog boards
//   - describe_board: Render a board as a character grid
//   - knight_instructions: Command syntax, rules and result statuses
//
// Transport Modes:
//   - Stdio: the mcp command serves tools on stdin/stdout
//   - HTTP: the serve command mounts a streamable HTTP handler on /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
