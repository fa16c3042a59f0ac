package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"codefactory/internal/apperrors"
	"codefactory/internal/models"
)

type submitRequest struct {
	UserStory  string `json:"userStory"`
	Priority   string `json:"priority"`
	Notes      string `json:"notes"`
	Repository string `json:"repository"`
}

type submitResponse struct {
	StoryID   string `json:"storyId"`
	Status    string `json:"status"`
	PRURL     string `json:"prUrl,omitempty"`
	Branch    string `json:"branch,omitempty"`
	LocalPath string `json:"localPath,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSubmit validates, persists and synchronously processes one story,
// answering with the PR URL or the failure message.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.KindValidation, "invalid request body: %v", err))
		return
	}

	story, err := s.stories.Submit(r.Context(), req.UserStory, models.StoryPriority(req.Priority), req.Notes, req.Repository)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.orchestrator.Process(r.Context(), story)
	if err != nil {
		log.Printf("server: story %s failed: %v", story.ID, err)
		writeStoryError(w, story.ID, err)
		return
	}

	resp := submitResponse{
		StoryID:   story.ID,
		Status:    string(story.Status),
		LocalPath: result.LocalPath,
	}
	if result.PullRequest != nil {
		resp.PRURL = result.PullRequest.URL
		resp.Branch = result.PullRequest.BranchName
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess, ok := s.sessions.fromRequest(r)
	if !ok {
		writeError(w, apperrors.New(apperrors.KindAuth, "GitHub authentication required"))
		return
	}
	repos, err := s.auth.ListRepositories(r.Context(), sess.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repositories": repos})
}

// handleOAuthCallback exchanges the authorization code and establishes a
// session. Exchange or profile failures are rendered to the caller; nobody
// is logged in silently.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	query := r.URL.Query()
	if errMsg := query.Get("error"); errMsg != "" {
		if desc := query.Get("error_description"); desc != "" {
			errMsg = desc
		}
		writeError(w, apperrors.New(apperrors.KindAuth, "GitHub authentication failed: %s", errMsg))
		return
	}

	token, err := s.auth.ExchangeCode(r.Context(), query.Get("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	profile, err := s.auth.FetchProfile(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	id := s.sessions.Create(token, *profile)
	setSessionCookie(w, id)
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": true, "user": profile})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (s *Server) handleStories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stories, err := s.stories.List(r.Context(), 100, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/stories/"), "/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "story not found"})
		return
	}
	story, err := s.stories.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "story not found"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses, preserving the
// originating collaborator's message.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// writeStoryError is writeError plus the story id so the submitter can look
// the failure up later.
func writeStoryError(w http.ResponseWriter, storyID string, err error) {
	writeJSON(w, statusFor(err), map[string]string{
		"error":   err.Error(),
		"storyId": storyID,
	})
}

func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuth:
		return http.StatusUnauthorized
	case apperrors.KindRepositoryAccess, apperrors.KindRemoteRejected,
		apperrors.KindGenerationProvider, apperrors.KindGenerationParse,
		apperrors.KindPullRequest:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
