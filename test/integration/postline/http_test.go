// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

//go:build integration

package postline_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/postline/postline/internal/api"
	"github.com/postline/postline/internal/auth"
	authpg "github.com/postline/postline/internal/auth/postgres"
	"github.com/postline/postline/internal/post"
	postpg "github.com/postline/postline/internal/post/postgres"
	"github.com/postline/postline/internal/session"
	"github.com/postline/postline/internal/web"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *api.ErrorBody  `json:"error"`
}

// apiClient posts operations to a live server, carrying cookies between calls.
type apiClient struct {
	base string
	http *http.Client
}

func newClient(base string) *apiClient {
	jar, err := cookiejar.New(nil)
	Expect(err).NotTo(HaveOccurred())
	return &apiClient{base: base, http: &http.Client{Jar: jar, Timeout: 10 * time.Second}}
}

func (c *apiClient) call(operation, body string) (int, envelope) {
	resp, err := c.http.Post(c.base+"/api/"+operation, "application/json", strings.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	var out envelope
	Expect(json.Unmarshal(raw, &out)).To(Succeed())
	return resp.StatusCode, out
}

func (c *apiClient) data(operation, body string) json.RawMessage {
	status, out := c.call(operation, body)
	Expect(status).To(Equal(http.StatusOK))
	Expect(out.Error).To(BeNil())
	return out.Data
}

var _ = Describe("HTTP API", func() {
	var srv *httptest.Server

	BeforeEach(func() {
		env.truncate()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		authSvc, err := auth.NewService(authpg.NewUserRepository(env.pool), auth.NewArgon2idHasher(), auth.WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())
		postSvc, err := post.NewService(postpg.NewPostRepository(env.pool), logger)
		Expect(err).NotTo(HaveOccurred())
		reg, err := api.NewDefaultRegistry(authSvc, postSvc)
		Expect(err).NotTo(HaveOccurred())
		dispatcher, err := api.NewDispatcher(reg, api.WithDispatcherLogger(logger))
		Expect(err).NotTo(HaveOccurred())

		cookies, err := session.NewCookieStore(session.NewRedisStore(env.redis), session.CookieConfig{
			HashKey: []byte("integration-secret-integration-secret"),
			TTL:     time.Hour,
			Logger:  logger,
		})
		Expect(err).NotTo(HaveOccurred())

		server, err := web.NewServer(web.Config{ShutdownTimeout: time.Second}, dispatcher, cookies, web.WithLogger(logger))
		Expect(err).NotTo(HaveOccurred())
		srv = httptest.NewServer(server.Handler())
		DeferCleanup(srv.Close)
	})

	It("serves the post lifecycle", func() {
		c := newClient(srv.URL)

		Expect(c.data("posts", `{}`)).To(MatchJSON(`[]`))

		var created post.Post
		Expect(json.Unmarshal(c.data("createPost", `{"title":"hello"}`), &created)).To(Succeed())
		Expect(created.ID).To(Equal(int64(1)))

		Expect(c.data("post", `{"id":1}`)).To(ContainSubstring(`"title":"hello"`))
		Expect(c.data("updatePost", `{"id":1,"title":"bye"}`)).To(ContainSubstring(`"title":"bye"`))
		Expect(c.data("updatePost", `{"id":1,"title":null}`)).To(ContainSubstring(`"title":"bye"`))
		Expect(c.data("updatePost", `{"id":9,"title":"x"}`)).To(MatchJSON(`null`))
		Expect(c.data("deletePost", `{"id":1}`)).To(MatchJSON(`true`))
		Expect(c.data("deletePost", `{"id":1}`)).To(MatchJSON(`true`))
		Expect(c.data("post", `{"id":1}`)).To(MatchJSON(`null`))
	})

	It("rejects malformed arguments before touching the database", func() {
		c := newClient(srv.URL)

		status, body := c.call("createPost", `{}`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body.Error).NotTo(BeNil())
		Expect(body.Error.Code).To(Equal(api.CodeInvalidArgs))

		Expect(c.data("posts", `{}`)).To(MatchJSON(`[]`))
	})

	It("keeps a user logged in across requests until logout", func() {
		c := newClient(srv.URL)
		Expect(c.data("me", `{}`)).To(MatchJSON(`null`))

		var res auth.UserResponse
		Expect(json.Unmarshal(c.data("register", `{"username":"alice","password":"secret"}`), &res)).To(Succeed())
		Expect(res.OK()).To(BeTrue())

		keys, err := env.redis.Keys(env.ctx, session.DefaultKeyPrefix+"*").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(HaveLen(1))

		Expect(c.data("me", `{}`)).To(ContainSubstring(`"username":"alice"`))
		Expect(c.data("logout", `{}`)).To(MatchJSON(`true`))
		Expect(c.data("me", `{}`)).To(MatchJSON(`null`))
		Expect(env.redis.DBSize(env.ctx).Val()).To(BeZero())

		Expect(json.Unmarshal(c.data("login", `{"username":"alice","password":"secret"}`), &res)).To(Succeed())
		Expect(res.User.Username).To(Equal("alice"))
		Expect(c.data("me", `{}`)).To(ContainSubstring(`"username":"alice"`))

		other := newClient(srv.URL)
		Expect(other.data("me", `{}`)).To(MatchJSON(`null`))
	})

	It("reports login mistakes as field errors", func() {
		c := newClient(srv.URL)
		c.data("register", `{"username":"alice","password":"secret"}`)

		var res auth.UserResponse
		Expect(json.Unmarshal(c.data("login", `{"username":"alice","password":"nope"}`), &res)).To(Succeed())
		Expect(res.Errors).To(ConsistOf(auth.FieldError{Field: "password", Message: auth.MsgIncorrectPassword}))

		Expect(json.Unmarshal(c.data("register", `{"username":"alice","password":"other"}`), &res)).To(Succeed())
		Expect(res.Errors).To(ConsistOf(auth.FieldError{Field: "username", Message: auth.MsgUsernameTaken}))
	})

	It("admits exactly one of many concurrent registrations", func() {
		const clients = 4
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			ok      int
			taken   int
			unknown []string
		)
		for i := 0; i < clients; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()

				var res auth.UserResponse
				raw := newClient(srv.URL).data("register", `{"username":"racer","password":"secret"}`)
				Expect(json.Unmarshal(raw, &res)).To(Succeed())

				mu.Lock()
				defer mu.Unlock()
				switch {
				case res.OK():
					ok++
				case len(res.Errors) == 1 && res.Errors[0].Message == auth.MsgUsernameTaken:
					taken++
				default:
					unknown = append(unknown, string(raw))
				}
			}()
		}
		wg.Wait()

		Expect(unknown).To(BeEmpty())
		Expect(ok).To(Equal(1))
		Expect(taken).To(Equal(clients - 1))
	})
})
