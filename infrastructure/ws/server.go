package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"chat-engine/auth"
	"chat-engine/errors"
	"chat-engine/observability"
	"chat-engine/runtime"
	"chat-engine/services"
)

// Config groups the transport knobs the server needs from the
// environment.
type Config struct {
	AllowedOrigins []string
	SendBufferSize int
	ReadLimit      int64
}

// Server exposes the auth endpoints, the websocket upgrade, and the
// health probe. All engine access goes through the router.
type Server struct {
	log         *slog.Logger
	cfg         Config
	router      *runtime.Router
	authService services.IAuthService
	issuer      *auth.TokenIssuer
	stats       *observability.Stats
	upgrader    websocket.Upgrader
	startedAt   time.Time
}

func NewServer(log *slog.Logger, cfg Config, router *runtime.Router,
	authService services.IAuthService, issuer *auth.TokenIssuer,
	stats *observability.Stats) *Server {
	s := &Server{
		log:         log,
		cfg:         cfg,
		router:      router,
		authService: authService,
		issuer:      issuer,
		stats:       stats,
		startedAt:   time.Now().UTC(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler builds the HTTP mux. The caller owns the http.Server around it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// checkOrigin mirrors the permissive-by-default CORS stance of the
// original deployment: "*" admits everyone, anything else is an exact
// match against the configured list.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	s.log.Warn("Origin rejected", "origin", origin)
	return false
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}

	id, err := s.authService.Signup(strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	case errors.Is(err, errors.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Username already exists"})
	case errors.Is(err, errors.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Email already registered"})
	default:
		s.log.Warn("Signup rejected", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request"})
		return
	}

	session, err := s.authService.Login(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": session.Token, "username": session.Username})
}

// handleWebsocket authenticates, upgrades, and runs the connection's
// pumps. The engine sees connect before any frame and disconnect
// exactly once when the read pump exits, however the socket died.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.authenticate(r)
	if err != nil {
		// Unauthorized connects are rejected outright, before the
		// engine is ever involved.
		s.log.Warn("Unauthorized connection attempt rejected", "error", err)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, claims.Username, s.cfg.SendBufferSize, s.log)
	go sess.writePump()

	s.router.Connect(sess.id, claims.Username, sess)
	defer s.router.Disconnect(sess.id)

	sess.readPump(r.Context(), s.cfg.ReadLimit, s.dispatchFrame)
}

// dispatchFrame decodes one inbound frame and hands it to the router.
// Malformed frames are logged and dropped; they never reach the engine.
func (s *Server) dispatchFrame(ctx context.Context, connID string, data []byte) {
	cmd, err := decodeCommand(data)
	if err != nil {
		s.stats.IncrDropped()
		s.log.Warn("Inbound frame rejected", "conn_id", connID, "error", err)
		return
	}
	s.router.Dispatch(ctx, connID, cmd)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
		"stats":  s.stats.Snapshot(),
	})
}

// authenticate accepts the token from the Authorization header or,
// for browser websocket clients that cannot set headers, the token
// query parameter.
func (s *Server) authenticate(r *http.Request) (*auth.CustomClaims, error) {
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	return s.issuer.Validate(token)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
