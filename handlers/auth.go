// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/survetic/accounts"
	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/middleware"
	"github.com/danielhkuo/survetic/models"
)

type AuthHandler struct {
	accounts *accounts.Service
}

func NewAuthHandler(svc *accounts.Service) *AuthHandler {
	return &AuthHandler{accounts: svc}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	u, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		Message: "Registration successful. Please check your email to verify your account.",
		UserID:  u.ID,
	})
}

// VerifyEmail handles GET /api/auth/verify-email?token=...
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Email verified successfully. You can now log in.",
	})
}

// VerifyEmailLink handles GET /verify-email, the link sent by email. It
// consumes the token like VerifyEmail but answers with a redirect to the
// web app.
func (h *AuthHandler) VerifyEmailLink(w http.ResponseWriter, r *http.Request) {
	err := h.accounts.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/login?message=email-verified", http.StatusFound)
	case apperr.Is(err, apperr.KindInternal):
		slog.Error("email verification failed", "error", err)
		http.Redirect(w, r, "/?error=verification-failed", http.StatusFound)
	default:
		http.Redirect(w, r, "/?error=invalid-token", http.StatusFound)
	}
}

// ResendVerification handles POST /api/auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req models.ResendVerificationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := h.accounts.ResendVerification(r.Context(), req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Verification email sent. Please check your inbox.",
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), middleware.CurrentIdentity(r.Context())); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// CurrentUser handles GET /api/auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, middleware.CurrentUser(r.Context()))
}

// UpdateProfile handles PATCH /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	u, err := h.accounts.UpdateProfile(r.Context(), middleware.CurrentIdentity(r.Context()), req)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, u)
}

// ChangePassword handles PATCH /api/auth/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), middleware.CurrentIdentity(r.Context()), req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Password updated successfully"})
}
