// Package server implements the MCP (Model Context Protocol) server for grading
// multiple-choice answer sheets.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - sheet_load: Load a sheet and get its metadata
//   - sheet_crop: Extract a rectangular region
//   - sheet_grid_overlay: Draw a coordinate grid for choosing a region of interest
//   - sheet_binarize: Show the thresholded mask the grader works on
//   - sheet_detect_marks: Detect bubbles and resolve answers without a key
//   - sheet_grade: Grade against an answer key and return the annotated sheet
//
// The recognition tools accept every grading option as an optional argument;
// omitted options use the server configuration. Sheets are normalized with the
// configured frame options (region of interest and maximum width) before
// recognition, so reported coordinates refer to the normalized frame.
//
// # Image Caching
//
// Decoded sheets are cached by path for the lifetime of the process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32001 (readable sheet with no
//     bubbles detected) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Logs go to stderr only.
package server
