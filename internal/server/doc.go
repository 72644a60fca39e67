// Package server implements the MCP (Model Context Protocol) server for the
// hue-cycle tools.
//
// The server exposes the same operations as the huecycle command line through
// JSON-RPC 2.0, so an MCP client can inspect a source image, preview single
// frames and build the animated GIF without shelling out.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - huecycle_load: Decode the source and report its metadata
//   - huecycle_sample: One pixel before and after the rotation of frame h
//   - huecycle_preview: One rendered frame as an inline PNG
//   - huecycle_render: Render all frames and encode the GIF
//   - huecycle_inspect: Frame count, delays and loop flag of a GIF
//
// A huecycle_render call carrying _meta.progressToken receives
// notifications/progress messages while frames are rendered and encoded.
//
// # Image Caching
//
// Decoded sources are cached by path and shared by every tool, including
// the render pipeline. huecycle_load always re-reads the file.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
