package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/layer-3/l3auth/core"
	"github.com/layer-3/l3auth/ports"
)

const (
	// SessionCookieName is the cookie the session token travels in when the
	// client does not use an Authorization header.
	SessionCookieName = "l3-session"

	// DefaultSessionTTL is how long a session lives after login.
	DefaultSessionTTL = 24 * time.Hour
)

// SessionManagerOptions override the session window and cookie name. Zero
// values mean defaults.
type SessionManagerOptions struct {
	TTL        time.Duration
	CookieName string
}

// SessionManager issues, looks up, and revokes opaque session tokens backed
// by the TTL store.
type SessionManager struct {
	store      ports.Store
	ttl        time.Duration
	cookieName string
	now        func() time.Time
}

// NewSessionManager creates a session manager backed by store.
func NewSessionManager(store ports.Store, opts SessionManagerOptions) *SessionManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = SessionCookieName
	}
	return &SessionManager{
		store:      store,
		ttl:        ttl,
		cookieName: cookieName,
		now:        time.Now,
	}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// CookieName returns the cookie the manager reads session tokens from.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// CreateSession stores a new session for identity under a fresh opaque token.
func (m *SessionManager) CreateSession(ctx context.Context, identity core.AuthIdentity) (core.SessionContext, error) {
	now := m.now()
	session := core.L3Session{
		Identity:  identity,
		IssuedAt:  core.Timestamp(now),
		ExpiresAt: core.Timestamp(now.Add(m.ttl)),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return core.SessionContext{}, fmt.Errorf("marshal session: %w", err)
	}

	token := newOpaqueToken()
	if err := m.store.Set(ctx, token, payload, m.ttl); err != nil {
		return core.SessionContext{}, fmt.Errorf("store session: %w", err)
	}

	return core.SessionContext{Token: token, Session: session}, nil
}

// GetSession resolves token to its stored session. Absent, expired, and
// unreadable entries all report ErrInvalidOrExpiredSession.
func (m *SessionManager) GetSession(ctx context.Context, token string) (core.L3Session, error) {
	raw, err := m.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return core.L3Session{}, core.ErrInvalidOrExpiredSession
		}
		return core.L3Session{}, fmt.Errorf("fetch session: %w", err)
	}

	var session core.L3Session
	if err := json.Unmarshal(raw, &session); err != nil {
		_ = m.store.Delete(ctx, token)
		return core.L3Session{}, core.ErrInvalidOrExpiredSession
	}
	return session, nil
}

// InvalidateSession deletes the session under token. Invalidating an absent
// token is not an error.
func (m *SessionManager) InvalidateSession(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// RequireSessionFromRequest resolves the session an incoming request carries,
// preferring a bearer Authorization header over the session cookie.
func (m *SessionManager) RequireSessionFromRequest(r *http.Request) (core.SessionContext, error) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = m.cookieToken(r.Header.Get("Cookie"))
	}
	if token == "" {
		return core.SessionContext{}, core.ErrMissingSession
	}

	session, err := m.GetSession(r.Context(), token)
	if err != nil {
		return core.SessionContext{}, err
	}
	return core.SessionContext{Token: token, Session: session}, nil
}

// BearerToken extracts the token of a bearer Authorization header, or "".
func BearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "bearer") {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// cookieToken extracts the session token from a Cookie header. The name match
// is case-insensitive and values may be quoted or percent-encoded; browsers
// and proxies disagree on all three.
func (m *SessionManager) cookieToken(header string) string {
	if header == "" {
		return ""
	}

	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(name), m.cookieName) {
			continue
		}

		value = strings.TrimSpace(value)
		value = strings.TrimPrefix(value, `"`)
		value = strings.TrimSuffix(value, `"`)
		if value == "" {
			continue
		}

		if decoded, err := url.PathUnescape(value); err == nil {
			return decoded
		}
		return value
	}
	return ""
}
