// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/auth"
	"github.com/postline/postline/internal/post"
	"github.com/postline/postline/internal/session"
	"github.com/postline/postline/internal/session/sessiontest"
	"github.com/postline/postline/internal/store"
	"github.com/postline/postline/internal/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memoryUsers is an in-memory auth.UserRepository with a unique username.
type memoryUsers struct {
	mu     sync.Mutex
	byID   map[int64]*auth.User
	nextID int64
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[int64]*auth.User)}
}

func (m *memoryUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return &store.ConstraintError{Constraint: "users_username_key"}
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	m.byID[u.ID] = &stored
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

// memoryPosts is an in-memory post.Repository.
type memoryPosts struct {
	mu     sync.Mutex
	byID   map[int64]post.Post
	nextID int64
	err    error
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{byID: make(map[int64]post.Post)}
}

func (m *memoryPosts) List(context.Context) ([]*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*post.Post
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.byID[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (m *memoryPosts) Get(_ context.Context, id int64) (*post.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (m *memoryPosts) Create(_ context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = *p
	return nil
}

func (m *memoryPosts) Update(_ context.Context, p *post.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	m.byID[p.ID] = *p
	return nil
}

func (m *memoryPosts) Delete(_ context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return 0, nil
	}
	delete(m.byID, id)
	return 1, nil
}

// plainHasher keeps tests fast; it is not a real hash.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

func (plainHasher) Verify(password, hash string) bool { return hash == "plain:"+password }

type fixture struct {
	server   *web.Server
	backend  *sessiontest.MemoryStore
	posts    *memoryPosts
	users    *memoryUsers
	registry *api.Registry
}

func newFixture(t *testing.T, opts ...web.Option) *fixture {
	t.Helper()
	users := newMemoryUsers()
	posts := newMemoryPosts()
	backend := sessiontest.NewMemoryStore()

	authSvc, err := auth.NewService(users, plainHasher{}, auth.WithLogger(quietLogger))
	require.NoError(t, err)
	postSvc, err := post.NewService(posts, quietLogger)
	require.NoError(t, err)
	reg, err := api.NewDefaultRegistry(authSvc, postSvc)
	require.NoError(t, err)
	dispatcher, err := api.NewDispatcher(reg, api.WithDispatcherLogger(quietLogger))
	require.NoError(t, err)

	cookies, err := session.NewCookieStore(backend, session.CookieConfig{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
		Logger:  quietLogger,
	})
	require.NoError(t, err)

	opts = append([]web.Option{web.WithLogger(quietLogger)}, opts...)
	server, err := web.NewServer(web.Config{
		ShutdownTimeout: time.Second,
		AllowedOrigins:  []string{"http://localhost:*", "https://*.example.com"},
	}, dispatcher, cookies, opts...)
	require.NoError(t, err)

	return &fixture{server: server, backend: backend, posts: posts, users: users, registry: reg}
}

func (f *fixture) call(t *testing.T, operation, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/"+operation, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(t *testing.T, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName {
			return c
		}
	}
	return nil
}

func mustDispatcher(t *testing.T, reg *api.Registry) *api.Dispatcher {
	t.Helper()
	d, err := api.NewDispatcher(reg, api.WithDispatcherLogger(quietLogger))
	require.NoError(t, err)
	return d
}

func mustCookies(t *testing.T, f *fixture) *session.CookieStore {
	t.Helper()
	cookies, err := session.NewCookieStore(f.backend, session.CookieConfig{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
		Logger:  quietLogger,
	})
	require.NoError(t, err)
	return cookies
}
