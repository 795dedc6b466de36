// Package restapi surfaces the analysis service and the admission gate over HTTP.
package restapi

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"     // swagger embed files
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger middleware

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/analyzer"
	"github.com/sharedcode/premortem/gate"
	"github.com/sharedcode/premortem/restapi/docs"
)

// BasePath is the prefix of every REST route.
const BasePath = "/api/v1"

// Server holds the dependencies of the REST handlers.
type Server struct {
	service *analyzer.Service
	gate    *gate.Gate
	store   premortem.ReportStore
	baseURL string
	auth    *Authenticator
	routes  Routes
}

// Option configures a Server.
type Option func(*Server)

// WithBaseURL sets the host part of share links.
func WithBaseURL(u string) Option {
	return func(s *Server) { s.baseURL = u }
}

// WithAuthenticator replaces the authenticator built from the environment.
func WithAuthenticator(a *Authenticator) Option {
	return func(s *Server) { s.auth = a }
}

// New creates a Server and registers its routes. Reports are read from the service's store.
func New(svc *analyzer.Service, gt *gate.Gate, opts ...Option) (*Server, error) {
	s := &Server{service: svc, gate: gt, store: svc.Store(), baseURL: "http://localhost:8080"}
	for _, o := range opts {
		o(s)
	}
	if s.auth == nil {
		s.auth = NewAuthenticator(AuthConfigFromEnv(), nil)
	}
	for _, rm := range []RestMethod{
		{GET, "/health", s.health, true},
		{GET, "/session", s.session, false},
		{POST, "/analyses", s.runAnalysis, false},
		{GET, "/analyses", s.listAnalyses, false},
		{GET_ONE, "/analyses/:id", s.getAnalysis, false},
		{GET_ONE, "/analyses/:id/share", s.shareAnalysis, false},
		{POST, "/scenarios/admit", s.admitScenarios, false},
		{POST, "/scenarios/explain", s.explainScenario, false},
	} {
		if err := s.routes.Register(rm); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Routes exposes the route registry so callers can add methods before Handler is built.
func (s *Server) Routes() *Routes { return &s.routes }

// Handler builds the gin router: registered methods under BasePath, all but the
// public ones behind bearer token verification, and the swagger UI.
func (s *Server) Handler() (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	docs.SwaggerInfo.BasePath = BasePath

	v1 := router.Group(BasePath)
	if err := s.routes.mount(v1, s.auth.Wrap); err != nil {
		return nil, err
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	return router, nil
}

// Run serves on address until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, address string) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: address, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("REST API listening", "address", address, "swagger", "/swagger/index.html")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("REST API shutting down")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request", "method", c.Request.Method, "path", c.FullPath(),
			"status", c.Writer.Status(), "elapsed", time.Since(start))
	}
}
