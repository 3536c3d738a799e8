// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps sessions in the sessions table.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

type sessData struct {
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *SQLStore) Create(ctx context.Context, sid, userID string, expiresAt time.Time) error {
	now := s.now().UTC()

	// Expired rows are never read again; clear them out as we go
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expire <= $1`, now); err != nil {
		return fmt.Errorf("purge sessions: %w", err)
	}

	sess, err := json.Marshal(sessData{UserID: userID, CreatedAt: now, ExpiresAt: expiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (sid, sess, expire, user_id)
		VALUES ($1, $2, $3, $4)
	`, sid, string(sess), expiresAt.UTC(), userID)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SQLStore) Lookup(ctx context.Context, sid string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM sessions WHERE sid = $1 AND expire > $2`,
		sid, s.now().UTC()).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return userID, nil
}

func (s *SQLStore) Delete(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE sid = $1`, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteUser(ctx context.Context, userID, keepSID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = $1 AND sid <> $2`, userID, keepSID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}
