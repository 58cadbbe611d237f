// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/postline/postline/internal/auth"
)

// Middleware attaches the session named name to each request and resolves it
// before the rest of the chain runs. When the backend fails, onError writes
// the response and the chain is aborted.
func Middleware(name string, store *CookieStore, onError func(*gin.Context, error)) gin.HandlersChain {
	return gin.HandlersChain{
		sessions.Sessions(name, store),
		func(c *gin.Context) {
			if _, err := store.Get(c.Request, name); err != nil {
				onError(c, err)
				c.Abort()
				return
			}
			c.Next()
		},
	}
}

// Handle is the request's session as seen by the services. Writes are kept in
// memory until Save.
type Handle struct {
	s sessions.Session
}

var _ auth.Session = (*Handle)(nil)

// FromGin returns the session attached by Middleware.
func FromGin(c *gin.Context) *Handle {
	return &Handle{s: sessions.Default(c)}
}

// UserID implements auth.Session.
func (h *Handle) UserID() (int64, bool) {
	id, ok := h.s.Get(userIDKey).(int64)
	return id, ok
}

// SetUserID implements auth.Session.
func (h *Handle) SetUserID(id int64) {
	h.s.Set(userIDKey, id)
}

// Clear implements auth.Session. The next Save deletes the stored entry and
// expires the cookie.
func (h *Handle) Clear() {
	h.s.Clear()
	h.s.Options(sessions.Options{Path: "/", MaxAge: -1})
}

// Save persists pending writes. It does nothing when the session was not
// modified during the request.
func (h *Handle) Save() error {
	return h.s.Save() //nolint:wrapcheck // store errors carry their own code
}
