// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	gsessions "github.com/gorilla/sessions"
	"github.com/gorilla/securecookie"
	"github.com/samber/oops"
)

// DefaultCookieName is the name of the session cookie.
const DefaultCookieName = "cookieId"

// DefaultTTL is the session lifetime: about ten years.
const DefaultTTL = 87600 * time.Hour

const userIDKey = "userId"

// CookieConfig configures a CookieStore.
type CookieConfig struct {
	// HashKey authenticates the cookie value with HMAC-SHA256. Required.
	HashKey []byte
	// BlockKey, when set, also encrypts the cookie value with AES.
	// It must be 16, 24 or 32 bytes.
	BlockKey []byte
	// TTL bounds both the store entry and the cookie. Defaults to DefaultTTL.
	TTL time.Duration
	// Secure sets the Secure cookie attribute.
	Secure bool
	Logger *slog.Logger
}

// CookieStore is a sessions.Store that keeps only a signed token in the
// cookie and the payload in a backing Store.
type CookieStore struct {
	backend Store
	codecs  []securecookie.Codec
	options *gsessions.Options
	ttl     time.Duration
	logger  *slog.Logger
}

var _ sessions.Store = (*CookieStore)(nil)

// NewCookieStore creates a CookieStore over backend.
func NewCookieStore(backend Store, cfg CookieConfig) (*CookieStore, error) {
	if backend == nil {
		return nil, oops.Code("SESSION_INVALID_CONFIG").Errorf("session backend is required")
	}
	if len(cfg.HashKey) == 0 {
		return nil, oops.Code("SESSION_INVALID_CONFIG").Errorf("cookie hash key is required")
	}
	switch len(cfg.BlockKey) {
	case 0, 16, 24, 32:
	default:
		return nil, oops.Code("SESSION_INVALID_CONFIG").
			With("length", len(cfg.BlockKey)).
			Errorf("cookie block key must be 16, 24 or 32 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var codecs []securecookie.Codec
	if len(cfg.BlockKey) > 0 {
		codecs = securecookie.CodecsFromPairs(cfg.HashKey, cfg.BlockKey)
	} else {
		codecs = securecookie.CodecsFromPairs(cfg.HashKey)
	}

	s := &CookieStore{
		backend: backend,
		codecs:  codecs,
		ttl:     cfg.TTL,
		logger:  cfg.Logger,
	}
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Options implements sessions.Store. The codecs reject cookies older than
// MaxAge.
func (s *CookieStore) Options(opts sessions.Options) {
	s.options = opts.ToGorillaOptions()
	if opts.MaxAge <= 0 {
		return
	}
	for _, codec := range s.codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(opts.MaxAge)
		}
	}
}

// Get implements gorilla sessions.Store, caching per request.
func (s *CookieStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New implements gorilla sessions.Store. It always returns a session; the
// error is non-nil only when the backend failed. A missing, tampered or
// expired cookie yields an empty session.
func (s *CookieStore) New(r *http.Request, name string) (*gsessions.Session, error) {
	sess := gsessions.NewSession(s, name)
	opts := *s.options
	sess.Options = &opts
	sess.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}

	var token string
	if err := securecookie.DecodeMulti(name, cookie.Value, &token, s.codecs...); err != nil {
		s.logger.DebugContext(r.Context(), "ignoring invalid session cookie", "error", err)
		return sess, nil
	}
	if !ValidToken(token) {
		return sess, nil
	}

	payload, found, err := s.backend.Get(r.Context(), token)
	if err != nil {
		return sess, err //nolint:wrapcheck // backend errors carry their own code
	}
	if !found {
		return sess, nil
	}

	sess.ID = token
	sess.IsNew = false
	if payload.UserID != 0 {
		sess.Values[userIDKey] = payload.UserID
	}
	return sess, nil
}

// Save implements gorilla sessions.Store. A negative MaxAge deletes the
// entry and expires the cookie; otherwise the payload is written and the
// cookie refreshed, minting a token for new sessions.
func (s *CookieStore) Save(r *http.Request, w http.ResponseWriter, sess *gsessions.Session) error {
	ctx := r.Context()
	opts := *s.options
	if sess.Options != nil && sess.Options.MaxAge < 0 {
		opts.MaxAge = sess.Options.MaxAge
	}

	if opts.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.backend.Delete(ctx, sess.ID); err != nil {
				return err //nolint:wrapcheck // backend errors carry their own code
			}
		}
		sess.ID = ""
		http.SetCookie(w, gsessions.NewCookie(sess.Name(), "", &opts))
		return nil
	}

	if sess.ID == "" {
		token, err := NewToken()
		if err != nil {
			return err
		}
		sess.ID = token
	}

	if err := s.backend.Set(ctx, sess.ID, payloadOf(sess), s.ttl); err != nil {
		return err //nolint:wrapcheck // backend errors carry their own code
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.codecs...)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}
	http.SetCookie(w, gsessions.NewCookie(sess.Name(), encoded, &opts))
	return nil
}

func payloadOf(sess *gsessions.Session) Payload {
	var p Payload
	if id, ok := sess.Values[userIDKey].(int64); ok {
		p.UserID = id
	}
	return p
}
