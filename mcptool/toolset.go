// Package mcptool exposes the tools of a Model Context Protocol server as
// function tools and executes the calls the model makes to them locally.
//
// This differs from oaikit.NewMCPTool, which asks the remote service to
// contact the MCP server itself.
//
//	ts, err := mcptool.ConnectURL(ctx, "http://localhost:8080/mcp", nil)
//	if err != nil {
//	    return err
//	}
//	defer ts.Close()
//
//	req.Tools = ts.Tools()
//	resp, err := client.CreateChatCompletion(ctx, req)
//	for _, call := range resp.Choices[0].Message.ToolCalls {
//	    out, err := ts.Call(ctx, call)
//	    ...
//	    messages = append(messages, oaikit.NewToolResultMessage(call.ID, out))
//	}
package mcptool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mudler/xlog"

	oaikit "github.com/blue-context/oaikit"
	"github.com/blue-context/oaikit/schema"
	"github.com/blue-context/oaikit/types"
)

// Implementation identifies the client during the MCP handshake.
var Implementation = &mcp.Implementation{Name: "oaikit", Version: "1.0.0"}

// Option configures a Toolset.
type Option func(*Toolset)

// WithLogger sets the logger. The default logs warnings to stderr.
func WithLogger(l *xlog.Logger) Option {
	return func(ts *Toolset) {
		if l != nil {
			ts.logger = l
		}
	}
}

// WithStrict marks the converted function tools as strict. MCP servers
// rarely publish schemas that satisfy strict mode, so it is off by default.
func WithStrict(strict bool) Option {
	return func(ts *Toolset) { ts.strict = strict }
}

// Toolset is a connected MCP server and the tools it lists.
//
// Thread Safety: Toolset is safe for concurrent use.
type Toolset struct {
	session *mcp.ClientSession
	logger  *xlog.Logger
	strict  bool

	mu    sync.RWMutex
	tools []oaikit.Tool
	names map[string]bool
}

// Connect performs the MCP handshake over transport and lists the server's
// tools.
func Connect(ctx context.Context, transport mcp.Transport, opts ...Option) (*Toolset, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: MCP transport is required", types.ErrMissingConfiguration)
	}
	ts := &Toolset{logger: defaultLogger()}
	for _, opt := range opts {
		opt(ts)
	}

	client := mcp.NewClient(Implementation, &mcp.ClientOptions{
		Capabilities: &mcp.ClientCapabilities{},
	})
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: connect MCP server: %v", types.ErrTransport, err)
	}
	ts.session = session

	if err := ts.Refresh(ctx); err != nil {
		session.Close()
		return nil, err
	}
	return ts, nil
}

// ConnectURL connects to an MCP server speaking the streamable HTTP
// transport. A nil httpClient uses http.DefaultClient.
func ConnectURL(ctx context.Context, endpoint string, httpClient *http.Client, opts ...Option) (*Toolset, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: MCP endpoint is required", types.ErrMissingConfiguration)
	}
	return Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint, HTTPClient: httpClient}, opts...)
}

// ConnectSSE connects to an MCP server speaking the older SSE transport.
func ConnectSSE(ctx context.Context, endpoint string, httpClient *http.Client, opts ...Option) (*Toolset, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: MCP endpoint is required", types.ErrMissingConfiguration)
	}
	return Connect(ctx, &mcp.SSEClientTransport{Endpoint: endpoint, HTTPClient: httpClient}, opts...)
}

// Refresh lists the server's tools again.
func (ts *Toolset) Refresh(ctx context.Context) error {
	var tools []oaikit.Tool
	names := make(map[string]bool)
	for tool, err := range ts.session.Tools(ctx, nil) {
		if err != nil {
			return fmt.Errorf("%w: list MCP tools: %v", types.ErrTransport, err)
		}
		params, err := convertSchema(tool.InputSchema)
		if err != nil {
			ts.logger.Warn("MCP tool schema not usable, sending empty parameters", "tool", tool.Name, "error", err)
			params = schema.NewObject()
		}
		tools = append(tools, oaikit.NewFunctionTool(tool.Name, tool.Description, params, ts.strict))
		names[tool.Name] = true
	}

	ts.mu.Lock()
	ts.tools = tools
	ts.names = names
	ts.mu.Unlock()
	ts.logger.Debug("MCP tools listed", "count", len(tools))
	return nil
}

// Tools returns the server's tools as function tools, in listing order.
func (ts *Toolset) Tools() []oaikit.Tool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	out := make([]oaikit.Tool, len(ts.tools))
	copy(out, ts.tools)
	return out
}

// Has reports whether the server lists a tool called name.
func (ts *Toolset) Has(name string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.names[name]
}

// Call executes a chat completion tool call and returns the text to send
// back as the tool result. A result the server flags as an error fails
// with ErrRemote; the error message carries the server's text.
func (ts *Toolset) Call(ctx context.Context, call oaikit.ToolCall) (string, error) {
	return ts.CallFunction(ctx, call.Function.Name, call.Function.Arguments)
}

// CallJSON executes a tool whose arguments are a JSON object string, as
// delivered by the Responses API and realtime function calls.
func (ts *Toolset) CallJSON(ctx context.Context, name, arguments string) (string, error) {
	args := map[string]any{}
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("%w: arguments of %s are not a JSON object: %v", types.ErrInvalidArgument, name, err)
		}
	}
	return ts.CallFunction(ctx, name, args)
}

// CallFunction executes the named tool.
func (ts *Toolset) CallFunction(ctx context.Context, name string, args map[string]any) (string, error) {
	if !ts.Has(name) {
		return "", fmt.Errorf("%w: MCP server has no tool %q", types.ErrInvalidArgument, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := ts.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		ts.logger.Error("MCP tool call failed", "tool", name, "error", err)
		return "", fmt.Errorf("%w: call MCP tool %s: %v", types.ErrTransport, name, err)
	}

	out := resultText(result)
	if result.IsError {
		ts.logger.Warn("MCP tool returned an error", "tool", name, "output", out)
		return "", fmt.Errorf("%w: MCP tool %s: %s", types.ErrRemote, name, out)
	}
	ts.logger.Debug("MCP tool called", "tool", name)
	return out, nil
}

// Close ends the MCP session.
func (ts *Toolset) Close() error {
	err := ts.session.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func convertSchema(input any) (*schema.Object, error) {
	params := schema.NewObject()
	if input == nil {
		return params, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	if err := params.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return params, nil
}

// resultText joins the text content of a result. Structured content is
// used when the server returns no text.
func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) == 0 && r.StructuredContent != nil {
		if data, err := json.Marshal(r.StructuredContent); err == nil {
			return string(data)
		}
	}
	return strings.Join(parts, "\n")
}

func defaultLogger() *xlog.Logger {
	level := xlog.LogLevel(xlog.LogLevelWarn)
	handler := xlog.NewHandler(xlog.TextFormat, os.Stderr, &slog.HandlerOptions{Level: level.ToSlogLevel()})
	return xlog.NewLoggerWithHandler(handler, level)
}
