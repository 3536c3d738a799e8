// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package session keeps the server-side record of issued bearer tokens.
// A token is only accepted while the session it names is present here,
// which is what makes logout and password changes effective before the
// token's own expiry.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound means the session is unknown, expired, or revoked.
var ErrNotFound = errors.New("session not found")

// Store is a session registry keyed by session id.
type Store interface {
	// Create registers sid for userID until expiresAt.
	Create(ctx context.Context, sid, userID string, expiresAt time.Time) error
	// Lookup returns the user a live session belongs to.
	Lookup(ctx context.Context, sid string) (string, error)
	// Delete removes one session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sid string) error
	// DeleteUser removes every session of userID except keepSID, which may
	// be empty.
	DeleteUser(ctx context.Context, userID, keepSID string) error
}
