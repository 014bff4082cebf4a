package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/five82/imagestrip/internal/protocol"
	"github.com/five82/imagestrip/internal/strip"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Config wires a Server to its collaborators.
type Config struct {
	// Resizer scales every registered image. It is shared by all sessions.
	Resizer strip.Resizer
	// AssetDir is served under /assets/.
	AssetDir string
	// Strip holds the settings each new session starts with.
	Strip strip.Options
	// Preload is registered into every new session in order.
	Preload []strip.Resource
	Logger  *log.Logger
}

// Server exposes strip sessions over HTTP and WebSocket.
type Server struct {
	cfg      Config
	sessions *SessionStore
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// New validates cfg and returns a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Resizer == nil {
		return nil, errors.New("server: missing resizer")
	}
	if cfg.AssetDir == "" {
		return nil, errors.New("server: missing asset dir")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg.Strip.Logger = logger.WithPrefix("strip")
	if _, err := strip.New(cfg.Resizer, cfg.Strip); err != nil {
		return nil, err
	}
	return &Server{
		cfg:      cfg,
		sessions: NewSessionStore(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}, nil
}

// Sessions exposes the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/strips", s.handleCreate)
	mux.HandleFunc("GET /api/strips/{id}", s.handleStatus)
	mux.HandleFunc("DELETE /api/strips/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/strips/{id}/cycle", s.handleCycle)
	mux.HandleFunc("POST /api/strips/{id}/images", s.handleRegister)
	mux.HandleFunc("GET /api/strips/{id}/ws", s.handleSocket)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.cfg.AssetDir))))
	mux.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error("unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// CreateSession builds a strip, preloads it and stores it.
func (s *Server) CreateSession(ctx context.Context) (string, *strip.Strip, error) {
	st, err := strip.New(s.cfg.Resizer, s.cfg.Strip)
	if err != nil {
		return "", nil, err
	}
	for _, res := range s.cfg.Preload {
		if _, err := st.Register(ctx, res); err != nil {
			if errors.Is(err, strip.ErrAssetUnavailable) {
				s.logger.Warn("skipping preload image", "resource", res.Location, "err", err)
				continue
			}
			return "", nil, err
		}
	}
	id := s.sessions.Add(st)
	s.logger.Info("session created", "id", id, "images", st.Status(id).Images)
	return id, st, nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("imagestrip server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server", "sessions", s.sessions.IDs())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, st, err := s.CreateSession(r.Context())
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, protocol.Session{ID: id, Directives: st.Paint()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := s.session(w, id)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, st.Status(id))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.session(w, id); !ok {
		return
	}
	s.sessions.Delete(id)
	s.logger.Info("session closed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r.PathValue("id"))
	if !ok {
		return
	}
	var sig protocol.Signals
	if err := decodeBody(r, &sig); err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, st.Handle(sig))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	st, ok := s.session(w, r.PathValue("id"))
	if !ok {
		return
	}
	var req protocol.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	kind, err := strip.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}
	img, err := st.Register(r.Context(), strip.Resource{Kind: kind, Location: req.Location})
	if err != nil {
		s.writeError(w, err, statusFor(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, protocol.RegisterResponse{
		Index:  img.Index,
		Width:  img.Width,
		Height: img.Height,
	})
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, ok := s.session(w, id)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "id", id, "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Debug("websocket connected", "id", id)
	for {
		var sig protocol.Signals
		if err := conn.ReadJSON(&sig); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "id", id, "err", err)
			}
			return
		}
		if err := conn.WriteJSON(st.Handle(sig)); err != nil {
			s.logger.Warn("websocket write failed", "id", id, "err", err)
			return
		}
	}
}

func (s *Server) session(w http.ResponseWriter, id string) (*strip.Strip, bool) {
	st, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, fmt.Errorf("session %q not found", id), http.StatusNotFound)
		return nil, false
	}
	return st, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, strip.ErrUnsupportedResourceKind), errors.Is(err, strip.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, strip.ErrAssetUnavailable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("unable to encode JSON response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, code int) {
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", code, "err", err)
	} else {
		s.logger.Debug("request rejected", "status", code, "err", err)
	}
	s.writeJSON(w, code, protocol.ErrorResponse{Error: err.Error()})
}
