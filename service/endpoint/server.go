// Package endpoint exposes the small talk workflow over HTTP.
package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/viant/smalltalk/runtime/execution"
)

const (
	// RunPath accepts the workflow input as the request body.
	RunPath    = "/small-talk"
	HealthPath = "/health"
	maxBody    = 1 << 20
)

// Runner runs the configured workflow.
type Runner interface {
	Run(ctx context.Context, input map[string]interface{}) *execution.Result
}

// Server represents the HTTP entry point
type Server struct {
	runner Runner
	router *gin.Engine
	server *http.Server
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves requests on addr until Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	log.Info().Str("addr", addr).Msg("small talk endpoint listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// run wraps the JSON request body as {"body": ...}, the shape the workflow
// definition addresses with ${input.body...}.
func (s *Server) run(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	var body interface{}
	if len(data) > 0 {
		if err = json.Unmarshal(data, &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
			return
		}
	}
	result := s.runner.Run(c.Request.Context(), map[string]interface{}{"body": body})
	c.JSON(StatusCode(result), result)
}

// StatusCode maps a result onto an HTTP status.
func StatusCode(result *execution.Result) int {
	if result == nil {
		return http.StatusInternalServerError
	}
	if result.Status == execution.StatusSucceeded {
		return http.StatusOK
	}
	if result.Error == nil {
		return http.StatusInternalServerError
	}
	switch result.Error.Type {
	case execution.ErrorTypeBranchFailure:
		return http.StatusBadGateway
	case execution.ErrorTypeExecutionTimeout:
		return http.StatusGatewayTimeout
	case execution.ErrorTypeExecutionAborted:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// New creates a server for runner
func New(runner Runner, opts ...Option) *Server {
	s := &Server{runner: runner}
	settings := &options{mode: gin.ReleaseMode}
	for _, opt := range opts {
		opt(settings)
	}
	gin.SetMode(settings.mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if settings.accessLog {
		router.Use(gin.Logger())
	}
	router.GET(HealthPath, s.health)
	router.POST(RunPath, s.run)
	s.router = router
	return s
}
