// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/auth"
	"github.com/danielhkuo/survetic/cliparse"
	"github.com/danielhkuo/survetic/mailer"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/session"
	"github.com/danielhkuo/survetic/store"
)

const msgInvalidCredentials = "Invalid email or password"

// Identity is an authenticated caller: the user and the session its token
// names.
type Identity struct {
	User      *models.User
	SessionID string
}

// Service owns credentials: registration, verification, login, bearer
// token authentication, and account changes.
type Service struct {
	users    *store.Users
	sessions session.Store
	mailer   mailer.Mailer
	tokens   *auth.TokenIssuer
	cost     int

	// dummyHash is compared against when the email is unknown so a miss
	// costs as much as a wrong password.
	dummyHash string
}

func NewService(db *sql.DB, sessions session.Store, m mailer.Mailer, cfg cliparse.Config) *Service {
	dummy, err := auth.HashPassword("survetic-timing-equaliser", cfg.BcryptCost)
	if err != nil {
		slog.Warn("failed to prepare dummy password hash", "error", err)
	}
	return &Service{
		users:     store.NewUsers(db),
		sessions:  sessions,
		mailer:    m,
		tokens:    auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL),
		cost:      cfg.BcryptCost,
		dummyHash: dummy,
	}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.cost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperr.Validation("password must be at most 72 bytes")
	}
	if err != nil {
		return "", apperr.Internal("Failed to hash password", err)
	}
	return hash, nil
}

// Register creates an unverified account and emails a verification link.
// Delivery failures are logged and do not fail registration.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	token, tokenHash, err := auth.GenerateVerificationToken()
	if err != nil {
		return nil, apperr.Internal("Registration failed", err)
	}

	u := &models.User{
		ID:                    uuid.NewString(),
		Email:                 req.Email,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		PasswordHash:          hash,
		VerificationTokenHash: &tokenHash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User already exists with this email")
		}
		return nil, apperr.Internal("Registration failed", err)
	}
	slog.Info("user registered", "user_id", u.ID)

	err = s.mailer.SendVerification(ctx, mailer.Verification{To: u.Email, FirstName: u.FirstName, Token: token})
	if err != nil {
		slog.Warn("verification email failed; registration kept", "user_id", u.ID, "error", err)
	}

	return u, nil
}

// VerifyEmail consumes a verification token. Each token works once.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Validation("Invalid verification token")
	}

	id, err := s.users.VerifyByTokenHash(ctx, auth.HashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Invalid or expired verification token")
	}
	if err != nil {
		return apperr.Internal("Email verification failed", err)
	}

	slog.Info("email verified", "user_id", id)
	return nil
}

// ResendVerification rotates the pending token of an unverified user and
// sends it again. Here delivery is the whole point, so a failed send is an
// error.
func (s *Service) ResendVerification(ctx context.Context, req models.ResendVerificationRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal("Failed to resend verification email", err)
	}
	if u.IsVerified {
		return apperr.Validation("User is already verified").WithCode(apperr.CodeAlreadyVerified)
	}

	token, tokenHash, err := auth.GenerateVerificationToken()
	if err != nil {
		return apperr.Internal("Failed to resend verification email", err)
	}
	if err := s.users.SetVerificationToken(ctx, u.ID, tokenHash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Verified between the read and the write
			return apperr.Validation("User is already verified").WithCode(apperr.CodeAlreadyVerified)
		}
		return apperr.Internal("Failed to resend verification email", err)
	}

	err = s.mailer.SendVerification(ctx, mailer.Verification{To: u.Email, FirstName: u.FirstName, Token: token})
	if err != nil {
		return apperr.Internal("Failed to send verification email", err)
	}
	return nil
}

// Login checks credentials and opens a session. An unknown email and a
// wrong password fail identically; an unverified account is only reported
// as such once the password has matched.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, NormalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		auth.CheckPassword(s.dummyHash, req.Password)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !u.IsVerified {
		return nil, apperr.Unauthorized("Please verify your email before logging in").
			WithCode(apperr.CodeEmailNotVerified)
	}

	sid, err := auth.GenerateID(16)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	token, expiresAt, err := s.tokens.Issue(u.ID, sid)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	if err := s.sessions.Create(ctx, sid, u.ID, expiresAt); err != nil {
		return nil, apperr.Internal("Login failed", err)
	}

	slog.Info("user logged in", "user_id", u.ID)
	return &models.LoginResponse{
		Message:   "Login successful",
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *u,
	}, nil
}

// Authenticate resolves a bearer token to its caller. The token must be
// well signed and unexpired, its session must still exist, and so must its
// user.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	userID, err := s.sessions.Lookup(ctx, claims.SessionID())
	if errors.Is(err, session.ErrNotFound) {
		return nil, apperr.Unauthorized("Session expired or revoked")
	}
	if err != nil {
		return nil, apperr.Internal("Authentication failed", err)
	}
	if userID != claims.UserID() {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("User no longer exists")
	}
	if err != nil {
		return nil, apperr.Internal("Authentication failed", err)
	}

	return &Identity{User: u, SessionID: claims.SessionID()}, nil
}

// Logout ends the caller's session. The token stops working immediately.
func (s *Service) Logout(ctx context.Context, id *Identity) error {
	if err := s.sessions.Delete(ctx, id.SessionID); err != nil {
		return apperr.Internal("Logout failed", err)
	}
	slog.Info("user logged out", "user_id", id.User.ID)
	return nil
}

// UpdateProfile changes the caller's own names and email.
func (s *Service) UpdateProfile(ctx context.Context, id *Identity, req models.UpdateProfileRequest) (*models.User, error) {
	if req.Email != nil {
		e := NormalizeEmail(*req.Email)
		req.Email = &e
	}
	if req.FirstName != nil {
		f := strings.TrimSpace(*req.FirstName)
		req.FirstName = &f
	}
	if req.LastName != nil {
		l := strings.TrimSpace(*req.LastName)
		req.LastName = &l
	}
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.UpdateProfile(ctx, id.User.ID, store.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("Email is already in use")
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.Unauthorized("User no longer exists")
	case err != nil:
		return nil, apperr.Internal("Failed to update profile", err)
	}
	return u, nil
}

// ChangePassword replaces the caller's password after checking the current
// one, then signs out every other session.
func (s *Service) ChangePassword(ctx context.Context, id *Identity, req models.ChangePasswordRequest) error {
	if err := models.Validate(req); err != nil {
		return err
	}
	if !auth.CheckPassword(id.User.PasswordHash, req.CurrentPassword) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPasswordHash(ctx, id.User.ID, hash); err != nil {
		return apperr.Internal("Failed to change password", err)
	}
	if err := s.sessions.DeleteUser(ctx, id.User.ID, id.SessionID); err != nil {
		return apperr.Internal("Failed to revoke sessions", err)
	}

	slog.Info("password changed", "user_id", id.User.ID)
	return nil
}
