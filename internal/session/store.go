// Package session holds the operator's bearer credential for the lifetime
// of a browser session. The credential lives in exactly two places: an
// HttpOnly cookie carrying the session ID (readable by the edge guard) and
// a Redis record keyed by that ID (readable by handlers). Both are written
// and cleared together through the Manager, which is the single source of
// truth for the route guards.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession indicates that no valid session exists for the request.
// Absence is terminal for protected views: the only correct reaction is a
// redirect to the unauthenticated landing surface.
var ErrNoSession = errors.New("session: no active session")

// Manager orchestrates cookie based sessions backed by Redis.
type Manager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session holds per-request session data. The credential is the opaque
// bearer token issued by the authority at login.
type Session struct {
	ID         string
	credential string
	values     map[string]string
	isNew      bool
	dirty      bool
	destroyed  bool
}

type sessionPayload struct {
	Credential string            `json:"credential"`
	Values     map[string]string `json:"values,omitempty"`
}

// NewManager constructs a Manager.
func NewManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Load restores the session referenced by the request cookie, or returns a
// fresh unauthenticated session when no cookie or Redis record exists.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return m.newSession(), nil
		}
		return nil, err
	}

	payload, err := m.client.Get(ctx, m.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := m.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:         cookie.Value,
		credential: stored.Credential,
		values:     stored.Values,
	}
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed. A
// destroyed session is removed from both storage locations.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if sess.ID != "" {
			if err := m.client.Del(ctx, m.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	if sess.dirty || sess.isNew {
		payload := sessionPayload{Credential: sess.credential, Values: sess.values}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := m.client.Set(ctx, m.redisKey(sess.ID), data, m.ttl).Err(); err != nil {
			return err
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   m.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(m.ttl),
		})
	}
	return nil
}

// Destroy marks the session for removal from both storage locations on the
// next Commit.
func (m *Manager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// Credential returns the stored bearer token for the request's session, or
// ErrNoSession when the caller is unauthenticated.
func (m *Manager) Credential(ctx context.Context, r *http.Request) (string, error) {
	sess, err := m.Load(ctx, r)
	if err != nil {
		return "", err
	}
	if sess.Credential() == "" {
		return "", ErrNoSession
	}
	return sess.Credential(), nil
}

// TTL exposes the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (m *Manager) CookieName() string {
	return m.cookieName
}

func (m *Manager) newSession() *Session {
	return &Session{isNew: true}
}

func (m *Manager) redisKey(id string) string {
	return "console:session:" + id
}

// SetCredential stores the bearer token in the session.
func (s *Session) SetCredential(token string) {
	s.credential = token
	s.dirty = true
}

// Credential returns the bearer token, or "" when unauthenticated.
func (s *Session) Credential() string {
	if s == nil || s.destroyed {
		return ""
	}
	return s.credential
}

// ClearCredential removes the bearer token without tearing down the rest of
// the session state.
func (s *Session) ClearCredential() {
	s.credential = ""
	s.dirty = true
}

// Set stores a key-value pair.
func (s *Session) Set(key, value string) {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves a value.
func (s *Session) Get(key string) string {
	if s.values == nil {
		return ""
	}
	return s.values[key]
}
