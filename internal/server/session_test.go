package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"codefactory/internal/models"
)

func TestSessionRoundTrip(t *testing.T) {
	store := NewSessionStore()

	id := store.Create("gh-token", models.UserProfile{Login: "someone"})

	sess, ok := store.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "gh-token", sess.Token)
	assert.Equal(t, "someone", sess.Profile.Login)

	_, ok = store.Get("unknown")
	assert.False(t, ok)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	store := NewSessionStore()
	id := store.Create("gh-token", models.UserProfile{Login: "someone"})

	store.mu.Lock()
	sess := store.sessions[id]
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	store.sessions[id] = sess
	store.mu.Unlock()

	_, ok := store.Get(id)
	assert.False(t, ok)
}

func TestSessionFromRequestCookie(t *testing.T) {
	store := NewSessionStore()
	id := store.Create("gh-token", models.UserProfile{})

	req := httptest.NewRequest(http.MethodGet, "/api/repositories", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: id})

	sess, ok := store.fromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "gh-token", sess.Token)

	_, ok = store.fromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestDeleteRemovesSession(t *testing.T) {
	store := NewSessionStore()
	id := store.Create("gh-token", models.UserProfile{})

	store.Delete(id)

	_, ok := store.Get(id)
	assert.False(t, ok)
}
