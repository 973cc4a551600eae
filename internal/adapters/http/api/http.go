// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/mentorlink/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ProfileDependencies
	RecommendationDependencies
	FeedbackDependencies
	MentorshipDependencies
	SearchDependencies
	LeaderboardDependencies
	RankDependencies
	ChatDependencies
}

// Authenticator resolves the user behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// WebsocketServer upgrades a request into a realtime connection for userID.
type WebsocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	authn Authenticator
	ws    WebsocketServer

	writeLimit  int
	writeWindow time.Duration

	healthHandler         *HealthHandler
	statsHandler          *StatsHandler
	profileHandler        *ProfileHandler
	recommendationHandler *RecommendationHandler
	feedbackHandler       *FeedbackHandler
	mentorshipHandler     *MentorshipHandler
	searchHandler         *SearchHandler
	leaderboardHandler    *LeaderboardHandler
	rankHandler           *RankHandler
	chatHandler           *ChatHandler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWebsocket enables GET /ws.
func WithWebsocket(ws WebsocketServer) ServerOption {
	return func(s *Server) { s.ws = ws }
}

// WithWriteRateLimit limits write endpoints to n requests per window per IP.
// A non-positive n disables the limit.
func WithWriteRateLimit(n int, window time.Duration) ServerOption {
	return func(s *Server) {
		s.writeLimit = n
		if window > 0 {
			s.writeWindow = window
		}
	}
}

// WithMaxLeaderboardLimit bounds the limit accepted by GET /mentors/top.
func WithMaxLeaderboardLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.leaderboardHandler.maxLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, authn Authenticator, opts ...ServerOption) *Server {
	s := &Server{
		authn:                 authn,
		writeWindow:           time.Minute,
		healthHandler:         NewHealthHandler(),
		statsHandler:          NewStatsHandler(statsProvider),
		profileHandler:        NewProfileHandler(deps),
		recommendationHandler: NewRecommendationHandler(deps),
		feedbackHandler:       NewFeedbackHandler(deps),
		mentorshipHandler:     NewMentorshipHandler(deps),
		searchHandler:         NewSearchHandler(deps),
		leaderboardHandler:    NewLeaderboardHandler(deps, defaultLeaderboardMax),
		rankHandler:           NewRankHandler(deps),
		chatHandler:           NewChatHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Public
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	read := func(endpoint string, h http.HandlerFunc) http.HandlerFunc {
		return MetricsMiddleware(RequireAuth(s.authn, h), endpoint)
	}
	write := func(endpoint string, h http.HandlerFunc) http.HandlerFunc {
		return MetricsMiddleware(RateLimit(s.writeLimit, s.writeWindow, RequireAuth(s.authn, h)), endpoint)
	}

	mux.HandleFunc("POST /profiles", write("profiles", s.profileHandler.HandleCreate))
	mux.HandleFunc("GET /me", read("me", s.profileHandler.HandleGetMe))
	mux.HandleFunc("PATCH /me", write("me", s.profileHandler.HandleUpdateMe))
	mux.HandleFunc("GET /recommendations", read("recommendations", s.recommendationHandler.HandleGetRecommendations))
	mux.HandleFunc("POST /feedback", write("feedback", s.feedbackHandler.HandlePostFeedback))
	mux.HandleFunc("POST /mentorships", write("mentorships", s.mentorshipHandler.HandleRegister))
	mux.HandleFunc("POST /mentorships/progress", write("mentorships_progress", s.mentorshipHandler.HandleProgress))
	mux.HandleFunc("POST /mentorships/complete", write("mentorships_complete", s.mentorshipHandler.HandleComplete))
	mux.HandleFunc("GET /mentors/search", read("mentors_search", s.searchHandler.HandleSearch))
	mux.HandleFunc("GET /mentors/top", read("mentors_top", s.leaderboardHandler.HandleGetLeaderboard))
	mux.HandleFunc("GET /mentors/{id}/rank", read("mentors_rank", s.rankHandler.HandleGetRank))
	mux.HandleFunc("POST /chat/messages", write("chat_messages", s.chatHandler.HandleSend))
	mux.HandleFunc("GET /chat/students", read("chat_students", s.chatHandler.HandleStudents))

	if s.ws != nil {
		mux.HandleFunc("GET /ws", RequireAuth(s.authn, s.handleWebsocket))
	}
	logger.Get().Named("api").Debug(ctx, "routes registered", logger.Bool("websocket", s.ws != nil))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	const op = "api.websocket"
	userID, _ := userFrom(r)
	if err := s.ws.Serve(w, r, userID); err != nil {
		// The upgrader has already replied.
		logger.Get().Named("api").Debug(r.Context(), "websocket upgrade failed", logger.Error(Wrap(op, err)))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil && status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
