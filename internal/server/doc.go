// Package server implements the MCP (Model Context Protocol) server for the
// nuclei segmentation tools.
//
// The server exposes thresholding, run-length mask encoding, scoring,
// multi-threshold segmentation and threshold-model prediction as MCP tools
// so that MCP-compatible clients can drive the pipeline one image at a time.
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
// Inspection:
//   - nuclei_channels: Image metadata and per-channel intensity statistics
//   - nuclei_components: Connected components of a thresholded channel
//
// Masks:
//   - nuclei_encode: Run-length mask records for a thresholded channel
//   - nuclei_score: Mean precision over IoU thresholds against ground truth
//
// Segmentation:
//   - nuclei_segment: Segment tree leaves and trend-analysis boundaries
//
// Threshold models:
//   - nuclei_train: Best channel and threshold for ground-truth masks
//   - nuclei_predict: Apply the most similar stored model
//
// # Image Caching
//
// Decoded images and their derived channels are cached by path for the
// lifetime of the server process.
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
//	cfg, err := config.LoadEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.New(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
