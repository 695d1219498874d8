// Package mcp exposes a wizard as an MCP server, so agents can drive a
// signup flow through tools instead of HTTP calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/stile"
	"github.com/aretw0/stile/pkg/domain"
	"github.com/aretw0/stile/pkg/ports"
	"github.com/aretw0/stile/pkg/session"
)

// StepResponse is the unified structured result of every session tool: the
// rendered step plus where the session stands.
type StepResponse struct {
	SessionID string           `json:"session_id" jsonschema_description:"The session this response belongs to"`
	View      *domain.StepView `json:"view,omitempty" jsonschema_description:"The current step to present"`
	Outcome   *domain.Outcome  `json:"outcome,omitempty" jsonschema_description:"Validation result of the last input"`
	Values    domain.Values    `json:"values" jsonschema_description:"All collected answers"`
	Status    domain.Status    `json:"status" jsonschema_description:"Session status"`
	Submitted bool             `json:"submitted" jsonschema_description:"True once the signup has been created"`
	Record    *domain.Record   `json:"record,omitempty" jsonschema_description:"The created record after submission"`
}

// Server wraps a wizard engine and a session manager and exposes them as an
// MCP Server.
type Server struct {
	engine    ports.WizardEngine
	sessions  *session.Manager
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.WizardEngine, sessions *session.Manager) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("stile-mcp", strings.TrimSpace(stile.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
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

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: start_session
	startTool := mcp.NewTool("start_session",
		mcp.WithDescription("Start a wizard session, or resume it if the given session_id already exists."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Client-chosen session identifier")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStart))

	// TOOL: render_step
	renderTool := mcp.NewTool("render_step",
		mcp.WithDescription("Render the current step of a session without advancing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRender))

	// TOOL: answer
	answerTool := mcp.NewTool("answer",
		mcp.WithDescription("Apply an answer to the current step and advance on success. On the last step a valid answer submits the signup."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The answer. JSON values (arrays, objects, booleans) are decoded; anything else is taken as a string.")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(answerTool, mcp.NewStructuredToolHandler(s.handleAnswer))

	// TOOL: back
	backTool := mcp.NewTool("back",
		mcp.WithDescription("Retreat one visible step."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(backTool, mcp.NewStructuredToolHandler(s.handleBack))

	// TOOL: jump_to
	jumpTool := mcp.NewTool("jump_to",
		mcp.WithDescription("Revisit a previously answered, currently visible step by ID."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Target step ID")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(jumpTool, mcp.NewStructuredToolHandler(s.handleJump))

	// TOOL: get_catalog
	s.mcpServer.AddTool(mcp.NewTool("get_catalog",
		mcp.WithDescription("Get the full step catalog for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Catalog().Steps())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return StepResponse{}, fmt.Errorf("session_id is required")
	}

	state, err := s.sessions.LoadOrStart(ctx, sessionID, s.engine.Catalog())
	if err != nil {
		return StepResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.response(ctx, state, nil)
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)

	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return StepResponse{}, fmt.Errorf("load failed: %w", err)
	}
	return s.response(ctx, state, nil)
}

func (s *Server) handleAnswer(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)
	raw, _ := args["input"].(string)

	return s.operate(ctx, sessionID, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, outcome, err := s.engine.Next(ctx, state, decodeInput(raw))
		return next, &outcome, err
	})
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)

	return s.operate(ctx, sessionID, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, err := s.engine.Back(ctx, state)
		return next, nil, err
	})
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StepResponse, error) {
	sessionID, _ := args["session_id"].(string)
	stepID, _ := args["step_id"].(string)

	return s.operate(ctx, sessionID, func(state *domain.State) (*domain.State, *domain.Outcome, error) {
		next, outcome, err := s.engine.JumpTo(ctx, state, stepID)
		return next, &outcome, err
	})
}

// operate runs one engine call under the session lock and persists the
// result, mirroring the HTTP adapter.
func (s *Server) operate(ctx context.Context, sessionID string, fn func(*domain.State) (*domain.State, *domain.Outcome, error)) (StepResponse, error) {
	var next *domain.State
	var outcome *domain.Outcome

	err := s.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		next, outcome, err = fn(state)
		if err != nil {
			return err
		}

		return s.sessions.Store().Save(ctx, sessionID, next)
	})
	if err != nil {
		return StepResponse{}, err
	}

	return s.response(ctx, next, outcome)
}

func (s *Server) response(ctx context.Context, state *domain.State, outcome *domain.Outcome) (StepResponse, error) {
	resp := StepResponse{
		SessionID: state.SessionID,
		Outcome:   outcome,
		Values:    state.Values,
		Status:    state.Status,
		Submitted: state.Submitted(),
		Record:    state.Record,
	}

	if !state.Submitted() {
		view, err := s.engine.Render(ctx, state)
		if err != nil {
			return StepResponse{}, fmt.Errorf("render failed: %w", err)
		}
		resp.View = &view
	}

	return resp, nil
}

// decodeInput lets tool callers pass structured answers (multi-choice
// arrays, address objects, checkbox booleans) as JSON while keeping plain
// text untouched.
func decodeInput(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '[', '{', 't', 'f':
			var v any
			if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
				return v
			}
		}
	}
	return raw
}

func (s *Server) registerResources() {
	// EXPOSE: stile://catalog
	s.mcpServer.AddResource(mcp.NewResource("stile://catalog", "Current Step Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Catalog().Steps())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "stile://catalog",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
