// Package server exposes the running game and the level store over HTTP:
// level listing and loading for the renderer, the editor's save endpoint,
// and a WebSocket session that streams frames and accepts input.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lawnchairsociety/dragogauntlet/internal/config"
	"github.com/lawnchairsociety/dragogauntlet/internal/game"
	"github.com/lawnchairsociety/dragogauntlet/internal/level"
	"github.com/lawnchairsociety/dragogauntlet/internal/logger"
	"github.com/lawnchairsociety/dragogauntlet/internal/stage"
	"golang.org/x/crypto/bcrypt"
)

// maxLevelBody bounds an uploaded level document.
const maxLevelBody = 8 << 20

// Plain-text replies of the save endpoint.
const (
	replySuccess     = "Success"
	replyInvalidName = "Invalid name"
)

// Game is the part of the game driver the server uses.
type Game interface {
	Input(in stage.Input)
	Snapshot() *game.Snapshot
	LevelDocument() *level.Document
	Subscribe() (<-chan game.Event, func())
}

// Server serves the HTTP and WebSocket endpoints.
type Server struct {
	cfg   config.ServerConfig
	game  Game
	store level.Store

	connLimiter *ConnLimiter
	authLimiter *AuthLimiter
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	mu       sync.Mutex
	sessions map[*websocket.Conn]struct{}
	wg       sync.WaitGroup

	shutdownOnce sync.Once
}

// New builds a server. store may be nil, in which case the level endpoints
// answer 503.
func New(cfg config.ServerConfig, g Game, store level.Store) *Server {
	s := &Server{
		cfg:         cfg,
		game:        g,
		store:       store,
		connLimiter: NewConnLimiter(cfg),
		authLimiter: NewAuthLimiter(cfg.AuthRateLimit),
		sessions:    make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /levels", s.handleListLevels)
	mux.HandleFunc("GET /levels/{name}", s.handleLoadLevel)
	mux.HandleFunc("POST /save", s.handleSave)
	mux.HandleFunc("GET /ws", s.handleWebSocketUpgrade)
	return mux
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP server listening", "address", s.cfg.Address)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, closes every game socket and waits for
// the sessions to end or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.httpServer.Shutdown(ctx)
		s.authLimiter.Stop()

		s.mu.Lock()
		for conn := range s.sessions {
			conn.Close()
		}
		s.mu.Unlock()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if err == nil {
				err = ctx.Err()
			}
		}
		logger.Info("Server shutdown complete")
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "level storage unavailable", http.StatusServiceUnavailable)
		return
	}
	names, err := s.store.List(r.Context())
	if err != nil {
		logger.Error("Failed to list levels", "error", err)
		http.Error(w, "failed to list levels", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func (s *Server) handleLoadLevel(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "level storage unavailable", http.StatusServiceUnavailable)
		return
	}
	name := r.PathValue("name")
	doc, err := s.store.Load(r.Context(), name)
	switch {
	case errors.Is(err, level.ErrInvalidName):
		http.Error(w, replyInvalidName, http.StatusBadRequest)
	case errors.Is(err, level.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		logger.Error("Failed to load level", "name", name, "error", err)
		http.Error(w, "failed to load level", http.StatusInternalServerError)
	default:
		writeJSON(w, doc)
	}
}

// handleSave stores an edited level. Name problems are reported in the body
// with status 200, the way the editor expects.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "level storage unavailable", http.StatusServiceUnavailable)
		return
	}
	ip := clientIP(r)
	if !s.authorize(w, r, ip) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLevelBody))
	if err != nil {
		http.Error(w, "level too large", http.StatusRequestEntityTooLarge)
		return
	}
	doc, err := level.Parse(body)
	if errors.Is(err, level.ErrInvalidName) {
		logger.Warning("Rejected level save", "client_ip", ip, "error", err)
		io.WriteString(w, replyInvalidName)
		return
	}
	if err != nil {
		http.Error(w, "invalid level document", http.StatusBadRequest)
		return
	}

	if err := s.store.Save(r.Context(), doc); err != nil {
		logger.Error("Failed to save level", "name", doc.Name, "error", err)
		http.Error(w, "failed to save level", http.StatusInternalServerError)
		return
	}
	logger.Info("Level saved", "name", doc.Name, "client_ip", ip)
	io.WriteString(w, replySuccess)
}

// authorize checks the editor password when one is configured. Repeated
// failures lock the address out.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, ip string) bool {
	if s.cfg.EditorPasswordHash == "" {
		return true
	}
	if locked, remaining := s.authLimiter.IsLocked(ip); locked {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(remaining.Seconds())+1))
		http.Error(w, "too many failed attempts", http.StatusTooManyRequests)
		return false
	}

	_, password, ok := r.BasicAuth()
	if ok && bcrypt.CompareHashAndPassword([]byte(s.cfg.EditorPasswordHash), []byte(password)) == nil {
		s.authLimiter.RecordSuccess(ip)
		return true
	}

	if locked, d := s.authLimiter.RecordFailure(ip); locked {
		logger.Warning("Editor auth locked out", "client_ip", ip, "duration", d)
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="editor"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
	return false
}

// handleWebSocketUpgrade upgrades a request to a game session.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if !s.connLimiter.TryAcquire(ip) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", ip)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		s.connLimiter.Release(ip)
		return
	}

	s.mu.Lock()
	s.sessions[conn] = struct{}{}
	s.mu.Unlock()
	s.wg.Add(1)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.sessions, conn)
			s.mu.Unlock()
			s.connLimiter.Release(ip)
			conn.Close()
			s.wg.Done()
		}()
		newSession(conn, s.game, ip, s.cfg.MaxMessageSize).run()
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to write response", "error", err)
	}
}
