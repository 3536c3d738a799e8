// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/store"
)

// Admin operations. Callers are expected to have passed access.RequireAdmin.

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to fetch users", err)
	}
	return users, nil
}

// CreateUser adds an account directly. It is verified unless the request
// says otherwise, and no verification email is sent.
func (s *Service) CreateUser(ctx context.Context, req models.AdminCreateUserRequest) (*models.User, error) {
	req.Email = NormalizeEmail(req.Email)
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	verified := true
	if req.IsVerified != nil {
		verified = *req.IsVerified
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
		IsVerified:   verified,
		IsAdmin:      req.IsAdmin,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists with this email")
		}
		return nil, apperr.Internal("Failed to create user", err)
	}

	slog.Info("user created by admin", "user_id", u.ID, "is_admin", u.IsAdmin)
	return u, nil
}

// DeleteUser removes an account with its surveys and responses, and revokes
// its sessions so outstanding tokens stop working.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to delete user", err)
	}
	if err := s.sessions.DeleteUser(ctx, id, ""); err != nil {
		// Tokens still fail: Authenticate requires the user row
		slog.Warn("failed to revoke sessions of deleted user", "user_id", id, "error", err)
	}

	slog.Info("user deleted", "user_id", id)
	return nil
}

// SetVerification marks a user verified or unverified. Unverifying signs
// the user out everywhere, since login would now be refused.
func (s *Service) SetVerification(ctx context.Context, id string, req models.SetVerificationRequest) (*models.User, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.SetVerified(ctx, id, *req.IsVerified)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update verification", err)
	}

	if !u.IsVerified {
		if err := s.sessions.DeleteUser(ctx, id, ""); err != nil {
			return nil, apperr.Internal("Failed to revoke sessions", err)
		}
		slog.Info("user unverified by admin", "user_id", id)
	}
	return u, nil
}

// ResetPassword sets a new password and signs the user out everywhere.
func (s *Service) ResetPassword(ctx context.Context, id string, req models.ResetPasswordRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, id, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Failed to update password", err)
	}
	if err := s.sessions.DeleteUser(ctx, id, ""); err != nil {
		return apperr.Internal("Failed to revoke sessions", err)
	}

	slog.Info("password reset by admin", "user_id", id)
	return nil
}
