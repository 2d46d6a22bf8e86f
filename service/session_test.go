package service

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/l3auth/adapters/store"
	"github.com/layer-3/l3auth/core"
)

func testIdentity() core.AuthIdentity {
	return core.AuthIdentity{
		Account:   "eip155:1:0xab5801a7d398351b8be11c439e05c5b3259aec9b",
		Namespace: "eip155",
		ChainID:   "1",
		Address:   "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
	}
}

func TestCreateAndGetSession(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})
	ctx := context.Background()

	sessionCtx, err := m.CreateSession(ctx, testIdentity())
	require.NoError(t, err)
	assert.NotEmpty(t, sessionCtx.Token)
	assert.Equal(t, testIdentity(), sessionCtx.Session.Identity)

	issuedAt, err := core.ParseTimestamp(sessionCtx.Session.IssuedAt)
	require.NoError(t, err)
	expiresAt, err := core.ParseTimestamp(sessionCtx.Session.ExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, expiresAt.Sub(issuedAt))

	session, err := m.GetSession(ctx, sessionCtx.Token)
	require.NoError(t, err)
	assert.Equal(t, sessionCtx.Session, session)
}

func TestGetSessionUnknownToken(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})

	_, err := m.GetSession(context.Background(), "bogus")
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredSession)
}

func TestGetSessionMalformedPayload(t *testing.T) {
	backing := store.NewMemoryStore()
	m := NewSessionManager(backing, SessionManagerOptions{})
	ctx := context.Background()

	require.NoError(t, backing.Set(ctx, "corrupt", []byte("not json"), time.Minute))

	_, err := m.GetSession(ctx, "corrupt")
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredSession)
}

func TestInvalidateSession(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})
	ctx := context.Background()

	sessionCtx, err := m.CreateSession(ctx, testIdentity())
	require.NoError(t, err)

	require.NoError(t, m.InvalidateSession(ctx, sessionCtx.Token))
	_, err = m.GetSession(ctx, sessionCtx.Token)
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredSession)

	// Invalidating again is not an error.
	assert.NoError(t, m.InvalidateSession(ctx, sessionCtx.Token))
}

func TestSessionExpiresWithTTL(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{TTL: time.Nanosecond})
	ctx := context.Background()

	sessionCtx, err := m.CreateSession(ctx, testIdentity())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = m.GetSession(ctx, sessionCtx.Token)
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredSession)
}

func TestRequireSessionFromRequest(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})
	ctx := context.Background()

	sessionCtx, err := m.CreateSession(ctx, testIdentity())
	require.NoError(t, err)
	token := sessionCtx.Token

	tests := []struct {
		name   string
		header map[string]string
	}{
		{
			name:   "bearer header",
			header: map[string]string{"Authorization": "Bearer " + token},
		},
		{
			name:   "bearer scheme is case-insensitive",
			header: map[string]string{"Authorization": "bearer " + token},
		},
		{
			name:   "plain cookie",
			header: map[string]string{"Cookie": "l3-session=" + token},
		},
		{
			name:   "cookie name is case-insensitive",
			header: map[string]string{"Cookie": "L3-Session=" + token},
		},
		{
			name:   "quoted cookie value",
			header: map[string]string{"Cookie": `l3-session="` + token + `"`},
		},
		{
			name:   "cookie among others",
			header: map[string]string{"Cookie": "theme=dark; l3-session=" + token + "; lang=en"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/users/me", nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}

			resolved, err := m.RequireSessionFromRequest(r)
			require.NoError(t, err)
			assert.Equal(t, token, resolved.Token)
			assert.Equal(t, sessionCtx.Session, resolved.Session)
		})
	}
}

func TestRequireSessionFromRequestPercentEncodedCookie(t *testing.T) {
	backing := store.NewMemoryStore()
	m := NewSessionManager(backing, SessionManagerOptions{})
	ctx := context.Background()

	session := core.L3Session{Identity: testIdentity(), IssuedAt: "2024-05-01T12:00:00.000Z", ExpiresAt: "2024-05-02T12:00:00.000Z"}
	payload := []byte(`{"identity":{"account":"eip155:1:0xab5801a7d398351b8be11c439e05c5b3259aec9b","namespace":"eip155","chainId":"1","address":"0xab5801a7d398351b8be11c439e05c5b3259aec9b"},"issuedAt":"2024-05-01T12:00:00.000Z","expiresAt":"2024-05-02T12:00:00.000Z"}`)
	require.NoError(t, backing.Set(ctx, "token%value", payload, time.Minute))

	r := httptest.NewRequest("GET", "/users/me", nil)
	r.Header.Set("Cookie", "l3-session=token%25value")

	resolved, err := m.RequireSessionFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "token%value", resolved.Token)
	assert.Equal(t, session, resolved.Session)
}

func TestRequireSessionFromRequestMissing(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})

	r := httptest.NewRequest("GET", "/users/me", nil)
	_, err := m.RequireSessionFromRequest(r)
	assert.ErrorIs(t, err, core.ErrMissingSession)
}

func TestRequireSessionFromRequestStaleToken(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})

	r := httptest.NewRequest("GET", "/users/me", nil)
	r.Header.Set("Authorization", "Bearer 0123456789abcdef")

	_, err := m.RequireSessionFromRequest(r)
	assert.ErrorIs(t, err, core.ErrInvalidOrExpiredSession)
}

func TestRequireSessionFromRequestPrefersBearerOverCookie(t *testing.T) {
	m := NewSessionManager(store.NewMemoryStore(), SessionManagerOptions{})
	ctx := context.Background()

	sessionCtx, err := m.CreateSession(ctx, testIdentity())
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/users/me", nil)
	r.Header.Set("Authorization", "Bearer "+sessionCtx.Token)
	r.Header.Set("Cookie", "l3-session=stale-token")

	resolved, err := m.RequireSessionFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, sessionCtx.Token, resolved.Token)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  bearer   abc  "))
	assert.Equal(t, "", BearerToken(""))
	assert.Equal(t, "", BearerToken("Bearer"))
	assert.Equal(t, "", BearerToken("Basic abc"))
}
