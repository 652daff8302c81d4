// Package httpapi serves the question answering HTTP API with fiber.
//
// Routes:
//
//	POST /ask          {question, filters:{country}} -> {answer, sources}
//	POST /retrieve     {query, filters:{country}}    -> {context, passages}
//	GET  /get_filters  -> {countries}
//	GET  /healthz      -> {result: "ok"}
//
// Every failure is rendered as {"error": "..."}.
package httpapi

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
)

// shutdownTimeout bounds how long in-flight requests may take after the
// server is asked to stop.
const shutdownTimeout = 10 * time.Second

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("httpapi: answer service is required")

// Ports aggregates the driving ports behind the API.
type Ports struct {
	Answer    driving.AnswerService
	Retriever driving.RetrieverService
	Countries driving.CountryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}

// Config configures the server.
type Config struct {
	// AccessLog receives one line per request when set.
	AccessLog io.Writer

	// Timeout bounds reading a request and writing its response. Zero means no limit.
	Timeout time.Duration
}

// Server is the HTTP API.
type Server struct {
	app *fiber.App
}

// NewServer creates a server with all routes registered.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "heritage",
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Timeout,
		WriteTimeout:          cfg.Timeout,
	})
	app.Use(recover.New())
	if cfg.AccessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: cfg.AccessLog}))
	}

	h := NewHandler(ports)
	app.Get("/healthz", h.HandleHealthy)
	app.Get("/get_filters", h.HandleFilters)
	app.Post("/ask", h.HandleAsk)
	if ports.Retriever != nil {
		app.Post("/retrieve", h.HandleRetrieve)
	}

	return &Server{app: app}, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
