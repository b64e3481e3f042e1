package authz

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/marquee-cms/marquee/internal/shared"
	_ "github.com/marquee-cms/marquee/internal/testing/guard"
)

type stubSource struct {
	principals map[int64]*Principal
	err        error
	calls      int
}

func (s *stubSource) PrincipalByID(_ context.Context, id int64) (*Principal, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.principals[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func newTestMiddleware(t *testing.T, source *stubSource) Middleware {
	t.Helper()
	return Middleware{
		Engine: NewEngineWithClock(func() time.Time { return testNow }),
		Source: source,
		Logger: slog.Default(),
	}
}

func requestWithSessionUser(t *testing.T, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sm := shared.NewSessionManager(client, "marquee_session", "secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/festivals", nil)
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestWithPrincipalLoadsFreshPrincipal(t *testing.T) {
	source := &stubSource{principals: map[int64]*Principal{
		42: {ID: 42, Role: RoleEditor, Active: true},
	}}
	mw := newTestMiddleware(t, source)

	var captured *Principal
	handler := mw.WithPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = PrincipalFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSessionUser(t, "42"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	require.Equal(t, int64(42), captured.ID)
	require.Equal(t, 1, source.calls)
}

func TestWithPrincipalPassesThroughUnauthenticated(t *testing.T) {
	source := &stubSource{}
	mw := newTestMiddleware(t, source)

	handler := mw.WithPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Nil(t, PrincipalFromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSessionUser(t, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, source.calls)
}

func TestWithPrincipalStaleSessionPassesThrough(t *testing.T) {
	source := &stubSource{principals: map[int64]*Principal{}}
	mw := newTestMiddleware(t, source)

	handler := mw.WithPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Nil(t, PrincipalFromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSessionUser(t, "99"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireDeniesWithMissingPermission(t *testing.T) {
	mw := newTestMiddleware(t, &stubSource{})

	handler := mw.Require(PermPagesDelete)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/pages/1", nil)
	p := &Principal{ID: 7, Role: RoleEditor, Active: true}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "missing permission: "+PermPagesDelete)
}

func TestRequireAllowsGranted(t *testing.T) {
	mw := newTestMiddleware(t, &stubSource{})

	handler := mw.Require(PermPagesEdit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPut, "/pages/1", nil)
	p := &Principal{ID: 7, Role: RoleEditor, Active: true}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireDeniesWithoutPrincipal(t *testing.T) {
	mw := newTestMiddleware(t, &stubSource{})

	handler := mw.Require(PermPagesView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyAdmitsOnAnyGrant(t *testing.T) {
	mw := newTestMiddleware(t, &stubSource{})

	handler := mw.RequireAny(PermUsersDelete, PermPagesView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/pages", nil)
	p := &Principal{ID: 8, Role: RoleReadonly, Active: true}
	req = req.WithContext(ContextWithPrincipal(req.Context(), p))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestObserverSeesEveryDecision(t *testing.T) {
	type decision struct {
		perm    string
		allowed bool
	}
	var seen []decision
	mw := newTestMiddleware(t, &stubSource{})
	mw.Observer = func(permission string, allowed bool) {
		seen = append(seen, decision{permission, allowed})
	}

	ctx := ContextWithPrincipal(context.Background(), &Principal{ID: 9, Role: RoleReadonly, Active: true})
	require.True(t, mw.Allowed(ctx, PermPagesView))
	require.False(t, mw.Allowed(ctx, PermPagesDelete))

	require.Equal(t, []decision{
		{PermPagesView, true},
		{PermPagesDelete, false},
	}, seen)
}
