// Package httpapi exposes the REST surface of the job board: the job
// catalog and the apply/withdraw operations. It is a thin shell over
// services.JobService; tenant resolution happens in middleware and all
// isolation guarantees live below the service boundary.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/server/config"
	"github.com/tenantive/jobboard/internal/server/services"
)

// Server runs the HTTP endpoint.
type Server struct {
	addr            string
	log             logging.Logger
	jobs            *services.JobService
	secretKey       []byte
	shutdownTimeout time.Duration
}

// NewServer wires the HTTP surface.
func NewServer(cfg *config.Config, log logging.Logger, jobs *services.JobService) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{
		addr:            cfg.EndpointAddr,
		log:             log.With("module", "httpapi"),
		jobs:            jobs,
		secretKey:       []byte(cfg.SecretKey),
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Router builds the gin engine. Exposed separately so tests can drive it
// with httptest without binding a socket.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log))

	jobs := r.Group("/jobs", tenantResolver(s.secretKey))
	jobs.GET("", s.fetchJobs)
	jobs.PATCH("/:id", s.updateJob)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.log.Info(ctx, "starting HTTP server", "address", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
