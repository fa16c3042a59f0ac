package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"codefactory/internal/models"
)

const (
	sessionCookie   = "cf_session"
	sessionLifetime = 30 * time.Minute
)

// Session binds a browser to a GitHub access token and profile. Sessions are
// in-memory only; a restart logs everyone out.
type Session struct {
	Token     string
	Profile   models.UserProfile
	ExpiresAt time.Time
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

// Create stores the session and returns its id.
func (s *SessionStore) Create(token string, profile models.UserProfile) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = Session{
		Token:     token,
		Profile:   profile,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}
	s.mu.Unlock()
	return id
}

func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || time.Now().After(sess.ExpiresAt) {
		return Session{}, false
	}
	return sess, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// fromRequest resolves the request's session, if any.
func (s *SessionStore) fromRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return Session{}, false
	}
	return s.Get(cookie.Value)
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionLifetime / time.Second),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
