// Package stub is a scripted stand-in for the face-auth server's form
// endpoints. It serves the signup, login and face scan pages and answers
// their submissions from a Scenario; it performs no authentication itself.
package stub

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Options configure a Server.
type Options struct {
	Host           string
	Port           int
	SessionSecret  string // CSRF token key, random when empty
	AllowedOrigins []string
}

// Server represents the stub web server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	scenario   *Scenario
	journal    *journal
}

// NewServer creates a stub server answering from scenario.
func NewServer(scenario *Scenario, opts Options) *Server {
	if scenario == nil {
		scenario = &Scenario{}
	}
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		scenario: scenario,
		journal:  &journal{},
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware(opts.AllowedOrigins))
	r.Use(csrfMiddleware(opts.SessionSecret, scenario.CSRF, opts.AllowedOrigins))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute, // scripted delays
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting stub server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down stub server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Submissions returns the submissions received so far.
func (s *Server) Submissions() []Submission {
	return s.journal.list()
}
