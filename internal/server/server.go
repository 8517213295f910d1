// Package server exposes the orchestrator over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/argo-feed/internal/logger"
	"github.com/rxtech-lab/argo-feed/internal/types"
	"github.com/rxtech-lab/argo-feed/pkg/errors"
	"github.com/rxtech-lab/argo-feed/pkg/utils"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Feed is the orchestrator surface the API needs.
type Feed interface {
	OnFilterChange(ctx context.Context, next types.FilterState) error
	Refresh(ctx context.Context) error
	CurrentFilters() (types.FilterState, bool)
	Snapshot() types.Snapshot
	Subscribe() (<-chan types.Snapshot, func())
}

// Options configures a Server.
type Options struct {
	// MetricsPath is where the Prometheus handler is mounted. Empty disables it.
	MetricsPath string
	// Gatherer backs the metrics endpoint. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *logger.Logger
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Server serves the market data API.
type Server struct {
	feed     Feed
	logger   *logger.Logger
	router   *mux.Router
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	wsMu          sync.Mutex
	wsConnections map[*websocket.Conn]struct{}
}

// New creates a Server and registers its routes.
func New(feed Feed, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		feed:   feed,
		logger: log,
		router: mux.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		wsConnections: make(map[*websocket.Conn]struct{}),
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/filters", s.handleGetFilters).Methods(http.MethodGet)
	api.HandleFunc("/filters", s.handlePutFilters).Methods(http.MethodPut)
	api.HandleFunc("/series", s.handleSeries).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/schema", s.handleSchema).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream)

	if opts.MetricsPath != "" {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}

		s.router.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on address and serves in the background.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP server listening", zap.String("address", listener.Addr().String()))

	return nil
}

// Stop closes stream connections and shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.wsMu.Lock()
	for conn := range s.wsConnections {
		conn.Close()
	}

	s.wsConnections = make(map[*websocket.Conn]struct{})
	s.wsMu.Unlock()

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// handleGetFilters handles GET /api/v1/filters
func (s *Server) handleGetFilters(w http.ResponseWriter, _ *http.Request) {
	filters, ok := s.feed.CurrentFilters()
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeDataNotFound, "no filters have been applied yet"))

		return
	}

	writeJSON(w, http.StatusOK, filters)
}

// handlePutFilters handles PUT /api/v1/filters
func (s *Server) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	var next types.FilterState

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&next); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid filter body", err))

		return
	}

	if err := s.feed.OnFilterChange(r.Context(), next); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusAccepted, s.feed.Snapshot())
}

// handleSeries handles GET /api/v1/series
func (s *Server) handleSeries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.feed.Snapshot())
}

// handleRefresh handles POST /api/v1/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.Refresh(r.Context()); err != nil {
		s.writeError(w, err)

		return
	}

	writeJSON(w, http.StatusAccepted, s.feed.Snapshot())
}

// handleSchema handles GET /api/v1/schema
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := utils.ToJSONSchema(types.Snapshot{})
	if err != nil {
		s.writeError(w, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(schema))
}

// handleStream handles GET /api/v1/stream. Every committed snapshot is
// written as one JSON text message in commit order.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("WebSocket upgrade failed", zap.Error(err))

		return
	}

	s.wsMu.Lock()
	s.wsConnections[conn] = struct{}{}
	s.wsMu.Unlock()

	updates, unsubscribe := s.feed.Subscribe()

	defer func() {
		unsubscribe()

		s.wsMu.Lock()
		delete(s.wsConnections, conn)
		s.wsMu.Unlock()

		conn.Close()
	}()

	closed := make(chan struct{})
	go s.readPump(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed"),
					time.Now().Add(writeWait))

				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				s.logger.Debug("WebSocket write failed", zap.Error(err))

				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and reports when the peer goes away.
func (s *Server) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
	}

	message := err.Error()

	var e *errors.Error
	if errors.As(err, &e) && e.Cause == nil {
		message = e.Message
	}

	writeJSON(w, status, ErrorResponse{
		Code:    errors.GetCode(err),
		Message: message,
	})
}

func statusFor(err error) int {
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeDataNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeMissingParameter:
		return http.StatusConflict
	case code == errors.ErrCodeOrchestratorClosed, code == errors.ErrCodeFetchCancelled:
		return http.StatusServiceUnavailable
	case errors.IsConfigurationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
