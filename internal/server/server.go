// Package server serves the browser front end and a JSON API over an
// app.Session.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/app"
)

const shutdownTimeout = 5 * time.Second

// Config controls the listener and static files.
type Config struct {
	Port    int
	DocRoot string
	// AllowedOrigins for cross-origin API use; empty allows only same-origin
	// and localhost dev servers.
	AllowedOrigins []string
}

// Server is the local HTTP server.
type Server struct {
	cfg     Config
	session *app.Session
	logger  *zap.Logger
	router  *gin.Engine
	handler http.Handler
}

// New builds the router. Nothing listens until Run.
func New(session *app.Session, cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.New()
	router.Use(gin.Recovery(), session.Metrics.Middleware())

	s := &Server{
		cfg:     cfg,
		session: session,
		logger:  session.Logger.Named("server"),
		router:  router,
	}
	s.setupRoutes()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	s.handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(s.session.Metrics.Handler()))

	api := s.router.Group("/api")
	api.GET("/status", s.getStatus)

	w := api.Group("/wallet")
	w.POST("/connect", s.connectWallet)
	w.POST("/disconnect", s.disconnectWallet)
	w.POST("/chain", s.switchChain)

	abis := api.Group("/abis")
	abis.GET("", s.listABIs)
	abis.POST("", s.saveABI)
	abis.GET("/:name", s.getABI)
	abis.DELETE("/:name", s.deleteABI)

	c := api.Group("/contract")
	c.GET("", s.getContract)
	c.POST("", s.setContract)
	c.GET("/functions", s.listFunctions)
	c.POST("/call", s.callFunction)

	h := api.Group("/history")
	h.GET("", s.listHistory)
	h.DELETE("", s.clearHistory)
	h.DELETE("/:index", s.deleteHistoryItem)

	s.router.NoRoute(s.serveStatic)
}

// Run listens on the configured port until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", srv.Addr), zap.String("doc_root", s.cfg.DocRoot))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
