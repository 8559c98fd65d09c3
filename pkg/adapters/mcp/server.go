// Package mcp exposes a planner as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// GraphURI is the resource holding the decomposition graph.
const GraphURI = "arbor://domain/graph"

// PlanResponse is the structured result of the plan tool.
type PlanResponse struct {
	Goal  string        `json:"goal" jsonschema_description:"The goal that was planned"`
	Found bool          `json:"found" jsonschema_description:"Whether a plan exists"`
	Steps []domain.Step `json:"steps" jsonschema_description:"Operators to execute in order"`
	Stats domain.Stats  `json:"stats" jsonschema_description:"Search statistics"`
}

// TaskInfo describes one declaration.
type TaskInfo struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind" jsonschema_description:"operator or task"`
	Params []string `json:"params" jsonschema_description:"Parameters as name:type"`
}

// TaskList is the structured result of the list_tasks tool.
type TaskList struct {
	Domain string     `json:"domain"`
	Root   string     `json:"root,omitempty"`
	Tasks  []TaskInfo `json:"tasks"`
}

// Server wraps an MCP server around a planner.
type Server struct {
	planner   ports.Planner[facts.Facts]
	schemas   schema.Lookup
	root      string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithSchemas supplies named parameter lists.
func WithSchemas(fn schema.Lookup) Option { return func(s *Server) { s.schemas = fn } }

// WithRoot sets the goal used when a call names none.
func WithRoot(root string) Option { return func(s *Server) { s.root = root } }

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option { return func(s *Server) { s.logger = logger } }

// NewServer registers the tools and resources for planner.
func NewServer(planner ports.Planner[facts.Facts], opts ...Option) *Server {
	s := &Server{
		planner:   planner,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves over standard input and output until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over HTTP server-sent events until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	planTool := mcp.NewTool("plan",
		mcp.WithDescription("Find a plan for a goal task. Returns the ordered operator steps, or found=false when no decomposition succeeds."),
		mcp.WithString("goal", mcp.Description("Goal task name (optional when the domain declares a root)")),
		mcp.WithString("args", mcp.Description("JSON array of positional arguments, or JSON object keyed by parameter name")),
		mcp.WithString("state", mcp.Description("JSON object of relations: {relation: {key: value}}")),
		mcp.WithOutputSchema[PlanResponse](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlan))

	listTool := mcp.NewTool("list_tasks",
		mcp.WithDescription("List the operators and compound tasks of the domain with their parameters."),
		mcp.WithOutputSchema[TaskList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListTasks))
}

func (s *Server) handlePlan(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PlanResponse, error) {
	goal, _ := args["goal"].(string)
	if goal == "" {
		goal = s.root
	}
	if goal == "" {
		return PlanResponse{}, errors.New("goal is required")
	}

	rawArgs, _ := args["args"].(string)
	params, err := schema.BindJSON(s.planner.Domain(), s.schemas, goal, []byte(rawArgs))
	if err != nil {
		return PlanResponse{}, err
	}

	state := facts.New()
	if rawState, ok := args["state"].(string); ok && rawState != "" {
		if state, err = facts.DecodeJSON(strings.NewReader(rawState)); err != nil {
			return PlanResponse{}, fmt.Errorf("invalid state: %w", err)
		}
	}

	res, err := s.planner.PlanTask(ctx, state, goal, params...)
	if err != nil {
		s.logger.Warn("MCP Plan failed", "goal", goal, "error", err)
		return PlanResponse{}, fmt.Errorf("plan failed: %w", err)
	}

	steps := res.Steps()
	if steps == nil {
		steps = []domain.Step{}
	}
	return PlanResponse{Goal: goal, Found: res.Found, Steps: steps, Stats: res.Stats}, nil
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TaskList, error) {
	d := s.planner.Domain()
	out := TaskList{Domain: d.Name, Root: s.root, Tasks: []TaskInfo{}}
	for _, op := range d.Operators() {
		out.Tasks = append(out.Tasks, TaskInfo{Name: op.Name, Kind: "operator", Params: s.params(op.Name)})
	}
	for _, t := range d.Tasks() {
		out.Tasks = append(out.Tasks, TaskInfo{Name: t.Name, Kind: "task", Params: s.params(t.Name)})
	}
	return out, nil
}

func (s *Server) params(name string) []string {
	sch, _, err := schema.ForGoal(s.planner.Domain(), s.schemas, name)
	if err != nil || len(sch) == 0 {
		return []string{}
	}
	return sch.Strings()
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Domain Decomposition Graph",
		mcp.WithResourceDescription("Mermaid flowchart of tasks, methods and operators"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.planner.Domain(), s.root, nil),
			},
		}, nil
	})
}
