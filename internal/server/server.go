// Package server exposes the submission, story, repository and OAuth
// endpoints over plain net/http.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"codefactory/internal/models"
	"codefactory/internal/services"
)

// StoryProcessor is the orchestrator as the handlers see it.
type StoryProcessor interface {
	Process(ctx context.Context, story *models.UserStory) (*services.StoryResult, error)
}

type Server struct {
	stories      services.StoryService
	orchestrator StoryProcessor
	auth         services.AuthService
	sessions     *SessionStore
	mux          *http.ServeMux
	srv          *http.Server
	routeOnce    sync.Once
}

func New(stories services.StoryService, orchestrator StoryProcessor, auth services.AuthService) *Server {
	return &Server{
		stories:      stories,
		orchestrator: orchestrator,
		auth:         auth,
		sessions:     NewSessionStore(),
		mux:          http.NewServeMux(),
	}
}

func (s *Server) ListenAndServe(addr string) error {
	s.routes()
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Story processing blocks on clone, completion and push; give the
		// handler room before the server cuts the response.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) routes() {
	s.routeOnce.Do(func() {
		s.mux.HandleFunc("/health", s.handleHealth)
		s.mux.HandleFunc("/submit", s.handleSubmit)
		s.mux.HandleFunc("/api/repositories", s.handleRepositories)
		s.mux.HandleFunc("/auth/github/callback", s.handleOAuthCallback)
		s.mux.HandleFunc("/auth/logout", s.handleLogout)
		s.mux.HandleFunc("/stories", s.handleStories)
		s.mux.HandleFunc("/stories/", s.handleStory)
	})
}

// Handler returns the route table for tests.
func (s *Server) Handler() http.Handler {
	s.routes()
	return s.mux
}
