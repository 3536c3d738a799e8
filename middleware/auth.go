// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/survetic/access"
	"github.com/danielhkuo/survetic/accounts"
	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/models"
)

// Authenticator resolves a bearer token to its caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*accounts.Identity, error)
}

type identityKey struct{}

// BearerToken returns the token from the Authorization header, falling back
// to the "token" query parameter for links that can't set headers.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *accounts.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// CurrentIdentity returns the authenticated caller, or nil.
func CurrentIdentity(ctx context.Context) *accounts.Identity {
	id, _ := ctx.Value(identityKey{}).(*accounts.Identity)
	return id
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(ctx context.Context) *models.User {
	if id := CurrentIdentity(ctx); id != nil {
		return id.User
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(a Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			WriteError(w, err)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through. A bad token is treated as no token.
func OptionalAuth(a Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			next(w, r)
			return
		}

		id, err := a.Authenticate(r.Context(), token)
		switch {
		case err == nil:
			r = r.WithContext(WithIdentity(r.Context(), id))
		case apperr.Is(err, apperr.KindInternal):
			WriteError(w, err)
			return
		default:
			slog.Debug("ignoring invalid optional token", "path", r.URL.Path, "error", err)
		}
		next(w, r)
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin(a Authenticator, next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(a, func(w http.ResponseWriter, r *http.Request) {
		if err := access.RequireAdmin(CurrentUser(r.Context())); err != nil {
			WriteError(w, err)
			return
		}
		next(w, r)
	})
}
