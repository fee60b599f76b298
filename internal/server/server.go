package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"sisteminha/internal/handler"
	"sisteminha/internal/middleware"
	"sisteminha/internal/store"
	ws "sisteminha/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	kitH         *handler.KitHandler
	pedidoH      *handler.PedidoHandler
	reportH      *handler.ReportHandler
	authH        *handler.AuthHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	kitStore := store.NewKitStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	return &Server{
		db:           db,
		hub:          hub,
		kitH:         handler.NewKitHandler(kitStore, hub, logger.With("component", "kit")),
		pedidoH:      handler.NewPedidoHandler(kitStore, hub, logger.With("component", "pedido")),
		reportH:      handler.NewReportHandler(kitStore, logger.With("component", "report")),
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else requires a session token
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)

	// Canonical order resource
	mux.HandleFunc("GET /kits", s.kitH.List)
	mux.HandleFunc("POST /kits", s.kitH.Create)
	mux.HandleFunc("GET /kits/{id}", s.kitH.Get)
	mux.HandleFunc("PATCH /kits/{id}", s.kitH.Update)
	mux.HandleFunc("DELETE /kits/{id}", s.kitH.Delete)

	// Item lines, kind-discriminated (doces, salgados, bolos)
	mux.HandleFunc("POST /kits/{id}/{kind}", s.kitH.AddItem)
	mux.HandleFunc("PATCH /{kind}/{id}", s.kitH.UpdateItem)
	mux.HandleFunc("DELETE /{kind}/{id}", s.kitH.DeleteItem)

	// Completion flags
	mux.HandleFunc("PATCH /kits/{id}/status/entregue", s.kitH.SetEntregue)
	mux.HandleFunc("PATCH /kits/{id}/status/{kind}", s.kitH.SetStatus)

	// Legacy document dialect
	mux.HandleFunc("GET /pedidos", s.pedidoH.List)
	mux.HandleFunc("POST /pedidos", s.pedidoH.Create)
	mux.HandleFunc("GET /pedidos/{id}", s.pedidoH.Get)
	mux.HandleFunc("DELETE /pedidos/{id}", s.pedidoH.Delete)

	// Reports
	mux.HandleFunc("GET /relatorios", s.reportH.Relatorios)
	mux.HandleFunc("GET /financeiro", s.reportH.Financeiro)

	// Live order updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
