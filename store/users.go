// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/survetic/models"
)

const userColumns = `id, email, first_name, last_name, password_hash, is_verified,
	verification_token, is_admin, created_at, updated_at`

type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u     models.User
		token sql.NullString
	)
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsVerified,
		&token, &u.IsAdmin, timestamp{&u.CreatedAt}, timestamp{&u.UpdatedAt})
	if err != nil {
		return nil, err
	}
	if token.Valid {
		u.VerificationTokenHash = &token.String
	}
	return &u, nil
}

// Create inserts u, stamping its timestamps. A taken email yields
// ErrDuplicate.
func (s *Users) Create(ctx context.Context, u *models.User) error {
	ts := now()
	u.CreatedAt, u.UpdatedAt = ts, ts

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, is_verified,
			verification_token, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsVerified,
		nullable(u.VerificationTokenHash), u.IsAdmin, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Users) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// List returns all users, oldest first.
func (s *Users) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// VerifyByTokenHash marks the user holding the pending token as verified and
// consumes the token in one statement. Returns ErrNotFound if no user holds
// it, which also covers a token that was already used.
func (s *Users) VerifyByTokenHash(ctx context.Context, hash string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET is_verified = $1, verification_token = NULL, updated_at = $2
		WHERE verification_token = $3
		RETURNING id
	`, true, now(), hash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("verify user: %w", err)
	}
	return id, nil
}

// SetVerificationToken replaces the pending token hash. Only unverified
// users are touched.
func (s *Users) SetVerificationToken(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET verification_token = $1, updated_at = $2
		WHERE id = $3 AND is_verified = $4
	`, hash, now(), id, false)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return expectOne(res)
}

// SetVerified sets the verification flag. Verifying also drops any pending
// token.
func (s *Users) SetVerified(ctx context.Context, id string, verified bool) (*models.User, error) {
	query := `UPDATE users SET is_verified = $1, updated_at = $2 WHERE id = $3 RETURNING ` + userColumns
	if verified {
		query = `UPDATE users SET is_verified = $1, verification_token = NULL, updated_at = $2
			WHERE id = $3 RETURNING ` + userColumns
	}

	u, err := scanUser(s.db.QueryRowContext(ctx, query, verified, now(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("set verified: %w", err)
	}
	return u, nil
}

// ProfilePatch holds the self-service profile fields; nil leaves a column
// unchanged.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

func (s *Users) UpdateProfile(ctx context.Context, id string, p ProfilePatch) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			email = COALESCE($3, email),
			updated_at = $4
		WHERE id = $5
		RETURNING `+userColumns,
		nullable(p.FirstName), nullable(p.LastName), nullable(p.Email), now(), id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case isUniqueViolation(err):
		return nil, ErrDuplicate
	case err != nil:
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *Users) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, now(), id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return expectOne(res)
}

// Delete removes a user. Surveys and responses go with it via cascade.
func (s *Users) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
