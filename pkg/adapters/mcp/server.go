// Package mcp exposes one editor to agents as Model Context Protocol tools.
// Every tool is translated into the same events and shortcut actions a
// human produces, so the editing rules are identical for both.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/domain"
)

// GraphURI is the resource holding the current graph as JSON.
const GraphURI = "quiver://graph"

// Server wraps an Editor and exposes it as an MCP Server.
type Server struct {
	mu        sync.Mutex // tools select then act; keep those pairs atomic
	editor    *quiver.Editor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor *quiver.Editor) *Server {
	s := &Server{
		editor:    editor,
		mcpServer: server.NewMCPServer("quiver-mcp", strings.TrimSpace(quiver.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP endpoints (/sse, /message) over HTTP until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: cors.AllowAll().Handler(mux),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("add_state",
		mcp.WithDescription("Add a new state at the given canvas position (defaults to the canvas center)."),
		mcp.WithNumber("x", mcp.Description("Horizontal position")),
		mcp.WithNumber("y", mcp.Description("Vertical position")),
	), s.handleAddState)

	s.mcpServer.AddTool(mcp.NewTool("add_transition",
		mcp.WithDescription("Add a transition between two visible states, optionally labeled."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source state id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target state id")),
		mcp.WithString("label", mcp.Description("Transition label (defaults to the editor's default label)")),
	), s.handleAddTransition)

	s.mcpServer.AddTool(mcp.NewTool("remove_state",
		mcp.WithDescription("Remove a state with its transitions and markers."),
		mcp.WithString("id", mcp.Required(), mcp.Description("State id")),
	), s.stateAction(domain.ActionDelete))

	s.mcpServer.AddTool(mcp.NewTool("remove_transition",
		mcp.WithDescription("Remove the transition source -> target."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source state id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target state id")),
	), s.handleRemoveTransition)

	s.mcpServer.AddTool(mcp.NewTool("toggle_initial",
		mcp.WithDescription("Make a state initial, or stop it being initial."),
		mcp.WithString("id", mcp.Required(), mcp.Description("State id")),
	), s.stateAction(domain.ActionInitial))

	s.mcpServer.AddTool(mcp.NewTool("toggle_final",
		mcp.WithDescription("Make a state final, or stop it being final."),
		mcp.WithString("id", mcp.Required(), mcp.Description("State id")),
	), s.stateAction(domain.ActionFinal))

	s.mcpServer.AddTool(mcp.NewTool("add_loop",
		mcp.WithDescription("Add a self-loop on a state (at most one per state)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("State id")),
	), s.stateAction(domain.ActionLoop))

	s.mcpServer.AddTool(mcp.NewTool("pin_state",
		mcp.WithDescription("Pin a state so the layout no longer moves it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("State id")),
	), s.stateAction(domain.ActionPin))

	s.mcpServer.AddTool(mcp.NewTool("set_label",
		mcp.WithDescription("Set the label of the transition source -> target."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source state id")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target state id")),
		mcp.WithString("label", mcp.Required(), mcp.Description("New label")),
	), s.handleSetLabel)

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the automaton as JSON (default), mermaid or daut text."),
		mcp.WithString("format", mcp.Description("json, mermaid or daut")),
	), s.handleGetGraph)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Current automaton",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.editor.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// mutationsResult reports what changed, or an error result when nothing did.
func mutationsResult(muts []domain.Mutation, noop string) *mcp.CallToolResult {
	if len(muts) == 0 {
		return mcp.NewToolResultError(noop)
	}
	jsonBytes, _ := json.Marshal(muts)
	return mcp.NewToolResultText(string(jsonBytes))
}

func (s *Server) handleAddState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	frame := s.editor.Frame()
	pos := domain.Point{
		X: request.GetFloat("x", frame.Width/2),
		Y: request.GetFloat("y", frame.Height/2),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.ClearSelection()
	muts := s.editor.Dispatch(ctx, domain.PointerDown{Pos: pos, Target: domain.Target{}})
	s.editor.Dispatch(ctx, domain.PointerUp{Pos: pos})
	return mutationsResult(muts, "no state added"), nil
}

func (s *Server) handleAddTransition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := request.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, hasLabel := request.GetArguments()["label"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editor.Select(source); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.editor.Select(target); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.editor.ClearSelection()

	muts := s.editor.Dispatch(ctx, domain.PointerDown{Target: domain.StateTarget(source)})
	muts = append(muts, s.editor.Dispatch(ctx, domain.PointerUp{OverStateID: target})...)
	if len(muts) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no transition created from %s to %s (it may already exist or touch a hidden state)", source, target)), nil
	}
	if hasLabel {
		muts = append(muts, s.relabel(ctx, source, target, label)...)
	}
	return mutationsResult(muts, ""), nil
}

func (s *Server) handleRemoveTransition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, target, err := endpoints(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editor.SelectTransition(source, target); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mutationsResult(s.editor.Perform(ctx, domain.ActionDelete), "nothing removed"), nil
}

func (s *Server) handleSetLabel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, target, err := endpoints(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editor.SelectTransition(source, target); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mutationsResult(s.relabel(ctx, source, target, label), "label unchanged"), nil
}

// relabel edits the label the way the inline label editor does.
func (s *Server) relabel(ctx context.Context, source, target, label string) []domain.Mutation {
	if err := s.editor.SelectTransition(source, target); err != nil {
		return nil
	}
	s.editor.Dispatch(ctx, domain.LabelFocus{})
	return s.editor.Dispatch(ctx, domain.LabelCommit{Text: domain.LabelText(label)})
}

// stateAction builds a handler selecting the state "id" and performing action.
func (s *Server) stateAction(action domain.Action) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.editor.Select(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		muts := s.editor.Perform(ctx, action)
		s.editor.ClearSelection()
		return mutationsResult(muts, fmt.Sprintf("%s had no effect on state %s", action, id)), nil
	}
}

func (s *Server) handleGetGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := request.GetString("format", "json")
	if format == "json" {
		jsonBytes, err := json.Marshal(s.editor.Snapshot())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	}
	text, err := s.editor.Export(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func endpoints(request mcp.CallToolRequest) (string, string, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return "", "", err
	}
	target, err := request.RequireString("target")
	if err != nil {
		return "", "", err
	}
	if source == "" || target == "" {
		return "", "", errors.New("source and target are required")
	}
	return source, target, nil
}
