package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ironsheep/nuclei-tools-mcp/internal/channel"
	"github.com/ironsheep/nuclei-tools-mcp/internal/config"
)

// Server handles MCP protocol communication
type Server struct {
	// Version is reported to clients in serverInfo.
	Version string

	cache   *channel.ImageCache
	cfg     *config.Config
	logger  *log.Logger
	methods map[string]func(*MCPRequest) *MCPResponse
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailure    = -32000
)

// New creates a new MCP server instance. A nil cfg uses the defaults.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		Version: "dev",
		cache:   channel.NewImageCache(),
		cfg:     cfg,
	}
	if cfg.Debug() {
		s.logger = log.Default()
	}
	s.methods = map[string]func(*MCPRequest) *MCPResponse{
		"initialize": s.handleInitialize,
		"tools/list": s.handleToolsList,
		"tools/call": s.handleToolsCall,
		"ping": func(req *MCPRequest) *MCPResponse {
			return &MCPResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
		},
	}
	return s
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w
// until r is exhausted. Lines that are not valid JSON are answered with a
// parse error carrying a null id. Serve stops at the first write failure.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	encoder := json.NewEncoder(w)

	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logf("line %d: failed to parse request: %v", n, err)
			resp = &MCPResponse{
				JSONRPC: "2.0",
				Error:   &MCPError{Code: codeParseError, Message: "Parse error", Data: err.Error()},
			}
		} else {
			resp = s.handleRequest(&req)
		}
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("write response for line %d: %w", n, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// handleRequest routes requests to appropriate handlers. Notifications get
// no response.
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	if handler, ok := s.methods[req.Method]; ok {
		s.logf("request %v: %s", req.ID, req.Method)
		return handler(req)
	}
	if strings.HasPrefix(req.Method, "notifications/") {
		s.logf("notification: %s", req.Method)
		return nil
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Error: &MCPError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		},
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "nuclei-tools-mcp",
				"version": s.Version,
			},
		},
	}
}
