package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/infra/logging"
	"notegraph-ai/internal/usecase"
)

// Server is the HTTP edge. Handlers decode, delegate to use cases, and map
// domain errors onto status codes; no business rules live here.
type Server struct {
	chatUC     usecase.ChatUseCase
	graphUC    usecase.GraphUseCase
	serviceUC  usecase.ServiceUseCase
	settingsUC usecase.SettingsUseCase
	auth       *AuthManager
	dev        bool
	log        *zerolog.Logger
}

func NewServer(
	chatUC usecase.ChatUseCase,
	graphUC usecase.GraphUseCase,
	serviceUC usecase.ServiceUseCase,
	settingsUC usecase.SettingsUseCase,
	auth *AuthManager,
	dev bool,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "APIServer").Logger()
	return &Server{
		chatUC:     chatUC,
		graphUC:    graphUC,
		serviceUC:  serviceUC,
		settingsUC: settingsUC,
		auth:       auth,
		dev:        dev,
		log:        &l,
	}
}

// Router builds the chi mux with the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(TraceID(), Recover(s.log), RequestLog(s.log), Timeout(30*time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/v1/auth/token", s.handleToken)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Workspace(s.auth))

		r.Get("/graph", s.handleGetGraph)
		r.Get("/graph/nodes", s.handleListNodes)
		r.Post("/graph/nodes", s.handleAddNode)
		r.Post("/graph/edges", s.handleConnect)
		r.Post("/graph/topics", s.handleNodesFromTopics)

		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleStartSession)
		r.Post("/sessions/{id}/messages", s.handleSendMessage)
		r.Post("/sessions/{id}/end", s.handleEndSession)

		r.Get("/services", s.handleListServices)
		r.Put("/services", s.handleUpsertService)
		r.Post("/services/validate", s.handleValidateKey)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})

	return r
}

// ---------------- auth ----------------

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		http.Error(w, "auth disabled", http.StatusNotImplemented)
		return
	}
	var req struct {
		APIKey    string `json:"api_key"`
		Workspace string `json:"workspace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	token, err := s.auth.Exchange(req.APIKey, req.Workspace)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ---------------- graph ----------------

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.graphUC.Load(r.Context(), WorkspaceFrom(r.Context()))
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	g := s.graphUC.Load(r.Context(), WorkspaceFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"nodes": g.Nodes})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	node, err := s.graphUC.AddNode(r.Context(), WorkspaceFrom(r.Context()), req.Title, req.Content, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID string `json:"source_id"`
		TargetID string `json:"target_id"`
		Label    string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.graphUC.Connect(r.Context(), WorkspaceFrom(r.Context()), req.SourceID, req.TargetID, req.Label); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNodesFromTopics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OriginID string   `json:"origin_id"`
		Topics   []string `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	created, err := s.graphUC.CreateNodesFromTopics(r.Context(), WorkspaceFrom(r.Context()), req.OriginID, req.Topics)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": created})
}

// ---------------- chat ----------------

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.chatUC.History(r.Context(), WorkspaceFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NodeID string `json:"node_id"`
	}
	// An empty body starts a session bound to no node.
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	session, err := s.chatUC.StartSession(r.Context(), WorkspaceFrom(r.Context()), req.NodeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logging.WithSessID(r.Context(), sessionID)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	reply, err := s.chatUC.SendMessage(ctx, WorkspaceFrom(ctx), sessionID, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.chatUC.EndSession(r.Context(), WorkspaceFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- services ----------------

type serviceView struct {
	Provider model.Provider `json:"provider"`
	APIKey   string         `json:"api_key"`
	Model    string         `json:"model"`
	Enabled  bool           `json:"enabled"`
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	configs := s.serviceUC.List(r.Context(), WorkspaceFrom(r.Context()))
	views := make([]serviceView, 0, len(configs))
	for _, c := range configs {
		views = append(views, serviceView{
			Provider: c.Provider,
			APIKey:   logging.Redact(c.APIKey, s.dev),
			Model:    c.Model,
			Enabled:  c.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": views})
}

func (s *Server) handleUpsertService(w http.ResponseWriter, r *http.Request) {
	var cfg model.AIServiceConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.serviceUC.Upsert(r.Context(), WorkspaceFrom(r.Context()), cfg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidateKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		APIKey   string `json:"api_key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.serviceUC.ValidateKey(req.Provider, req.APIKey)})
}

// ---------------- settings ----------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settingsUC.Get(r.Context(), WorkspaceFrom(r.Context())))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings model.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	if err := s.settingsUC.Update(r.Context(), WorkspaceFrom(r.Context()), settings); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- helpers ----------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidAPIKey):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedService):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSessionFinished), errors.Is(err, domain.ErrNoServiceConfigured):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		code = http.StatusTooManyRequests
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
