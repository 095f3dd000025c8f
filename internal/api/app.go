package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/xynexa/collab-server/internal/config"
	"github.com/xynexa/collab-server/internal/gateway"
	"github.com/xynexa/collab-server/internal/meet"
	"github.com/xynexa/collab-server/internal/store"
)

type App struct {
	log            *log.Logger
	db             store.Repository
	mux            *http.Server
	gw             *gateway.Gateway
	bridge         *meet.Bridge
	signingKey     []byte
	allowedOrigins []string
}

func NewApp(mux *http.ServeMux, logger *log.Logger, gw *gateway.Gateway, bridge *meet.Bridge, db store.Repository, cfg *config.Config) *App {
	s := &App{
		log:            logger,
		db:             db,
		gw:             gw,
		bridge:         bridge,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/register", s.createAccount)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.Handle("GET /api/auth/session", s.authMiddleware(s.session))
	mux.Handle("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.Handle("POST /api/messages", s.authMiddleware(s.createMessage))
	mux.Handle("GET /api/messages", s.authMiddleware(s.getMessages))
	mux.Handle("POST /api/group-messages", s.authMiddleware(s.createGroupMessage))
	mux.Handle("GET /api/group-messages", s.authMiddleware(s.getGroupMessages))
	mux.Handle("POST /api/boards", s.authMiddleware(s.createBoard))
	mux.Handle("PATCH /api/boards/status", s.authMiddleware(s.updateBoardStatus))
	mux.Handle("GET /api/online", s.authMiddleware(s.onlineUsers))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))
	mux.Handle("GET /meet/ws", s.authMiddleware(s.serveMeetWs))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
