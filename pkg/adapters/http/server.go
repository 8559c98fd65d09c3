// Package http exposes a planner over a small JSON API.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/facts"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves a planner over facts.Facts states.
type Server struct {
	Planner  ports.Planner[facts.Facts]
	Schemas  schema.Lookup
	Root     string
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithSchemas supplies named parameter lists, enabling object-shaped args.
func WithSchemas(fn schema.Lookup) Option {
	return func(s *Server) { s.Schemas = fn }
}

// WithRoot sets the goal used when a request names none.
func WithRoot(root string) Option {
	return func(s *Server) { s.Root = root }
}

// WithMetrics records every planning call in m and, when g is non-nil,
// serves g on /metrics.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Metrics = m
		s.Gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// NewServer creates a Server for planner.
func NewServer(planner ports.Planner[facts.Facts], opts ...Option) *Server {
	s := &Server{Planner: planner, Logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for the planner.
func NewHandler(planner ports.Planner[facts.Facts], opts ...Option) http.Handler {
	return NewServer(planner, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tasks", s.ListTasks)
	r.Get("/graph", s.GetGraph)
	r.Post("/plan", s.Plan)
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// enableCORS adds permissive CORS headers so browser-based tools can call the API.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PlanRequest is the body of POST /plan.
type PlanRequest struct {
	Goal string `json:"goal"`
	// Args is either a positional list or, when the goal has named
	// parameters, an object keyed by parameter name.
	Args  json.RawMessage `json:"args,omitempty"`
	State json.RawMessage `json:"state,omitempty"`
}

// PlanResponse is the body of a successful POST /plan.
type PlanResponse struct {
	Goal  string        `json:"goal"`
	Found bool          `json:"found"`
	Steps []domain.Step `json:"steps"`
	Stats domain.Stats  `json:"stats"`
}

// TaskInfo describes one declaration in GET /tasks.
type TaskInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Params  []string `json:"params"`
	Methods []string `json:"methods,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	goal := body.Goal
	if goal == "" {
		goal = s.Root
	}
	if goal == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("goal is required"))
		return
	}

	params, err := schema.BindJSON(s.Planner.Domain(), s.Schemas, goal, body.Args)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	state := facts.New()
	if len(body.State) > 0 {
		if state, err = facts.DecodeJSON(bytes.NewReader(body.State)); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid state: %w", err))
			return
		}
	}

	res, err := s.Planner.PlanTask(r.Context(), state, goal, params...)
	if s.Metrics != nil {
		observability.Observe(s.Metrics, goal, res, err)
	}
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("Plan failed", "goal", goal, "error", err)
		} else {
			s.Logger.Warn("Plan rejected", "goal", goal, "error", err)
		}
		s.writeError(w, status, err)
		return
	}

	steps := res.Steps()
	if steps == nil {
		steps = []domain.Step{}
	}
	s.writeJSON(w, http.StatusOK, PlanResponse{Goal: goal, Found: res.Found, Steps: steps, Stats: res.Stats})
}

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	d := s.Planner.Domain()
	var out []TaskInfo
	for _, op := range d.Operators() {
		out = append(out, TaskInfo{Name: op.Name, Kind: "operator", Params: s.paramStrings(op.Name, op.Signature)})
	}
	for _, t := range d.Tasks() {
		info := TaskInfo{Name: t.Name, Kind: "task"}
		sig, _ := d.SignatureOf(t.Name)
		info.Params = s.paramStrings(t.Name, sig)
		for i, m := range t.Methods {
			name := m.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			info.Methods = append(info.Methods, name)
		}
		out = append(out, info)
	}
	if out == nil {
		out = []TaskInfo{}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) paramStrings(name string, sig domain.Signature) []string {
	if s.Schemas != nil {
		if sch, ok := s.Schemas(name); ok {
			return sch.Strings()
		}
	}
	strs := schema.FromSignature(sig).Strings()
	if strs == nil {
		strs = []string{}
	}
	return strs
}

func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(s.Planner.Domain(), s.Root, nil))
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
		"domain":  s.Planner.Domain().Name,
		"root":    s.Root,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps planner and coercion errors to HTTP status codes.
func statusFor(err error) int {
	var malformed *schema.MalformedError
	switch {
	case errors.As(err, &malformed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSignature):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCancelled):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrDepthExceeded), errors.Is(err, domain.ErrBudgetExceeded):
		return http.StatusInsufficientStorage
	case len(schema.ValidationErrors(err)) > 0:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
