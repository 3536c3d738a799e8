// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/survetic/accounts"
	"github.com/danielhkuo/survetic/cliparse"
	"github.com/danielhkuo/survetic/handlers"
	"github.com/danielhkuo/survetic/mailer"
	"github.com/danielhkuo/survetic/middleware"
	"github.com/danielhkuo/survetic/session"
	"github.com/danielhkuo/survetic/templates"
)

// NewRouter wires every route. The returned handler already includes panic
// recovery and CORS.
func NewRouter(db *sql.DB, cfg cliparse.Config, m mailer.Mailer, sessions session.Store) http.Handler {
	mux := http.NewServeMux()

	catalog := templates.Default()
	svc := accounts.NewService(db, sessions, m, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc)
	surveyHandler := handlers.NewSurveyHandler(db, catalog)
	responseHandler := handlers.NewResponseHandler(db)
	templateHandler := handlers.NewTemplateHandler(catalog)
	adminHandler := handlers.NewAdminHandler(svc)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAuth(svc, h))
	}
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(svc, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Link sent in the verification email
	mux.HandleFunc("GET /verify-email", middleware.WithLogging(authHandler.VerifyEmailLink))

	// Accounts
	mux.HandleFunc("POST /api/auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("GET /api/auth/verify-email", middleware.WithLogging(authHandler.VerifyEmail))
	mux.HandleFunc("POST /api/auth/resend-verification", middleware.WithLogging(authHandler.ResendVerification))
	mux.HandleFunc("POST /api/auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authed(authHandler.Logout))
	mux.HandleFunc("GET /api/auth/user", authed(authHandler.CurrentUser))
	mux.HandleFunc("PATCH /api/auth/profile", authed(authHandler.UpdateProfile))
	mux.HandleFunc("PATCH /api/auth/password", authed(authHandler.ChangePassword))

	// Survey management (owner only)
	mux.HandleFunc("GET /api/surveys", authed(surveyHandler.List))
	mux.HandleFunc("POST /api/surveys", authed(surveyHandler.Create))
	mux.HandleFunc("POST /api/surveys/from-template", authed(surveyHandler.CreateFromTemplate))
	mux.HandleFunc("PUT /api/surveys/{id}", authed(surveyHandler.Update))
	mux.HandleFunc("PATCH /api/surveys/{id}", authed(surveyHandler.Update))
	mux.HandleFunc("DELETE /api/surveys/{id}", authed(surveyHandler.Delete))
	mux.HandleFunc("POST /api/surveys/{id}/publish", authed(surveyHandler.Publish))
	mux.HandleFunc("POST /api/surveys/{id}/unpublish", authed(surveyHandler.Unpublish))
	mux.HandleFunc("GET /api/surveys/{id}/responses", authed(surveyHandler.Responses))
	mux.HandleFunc("GET /api/surveys/{id}/stats", authed(surveyHandler.Stats))
	mux.HandleFunc("GET /api/surveys/{id}/export", authed(surveyHandler.Export))

	// Owner read, or public read with ?public=true
	mux.HandleFunc("GET /api/surveys/{id}", middleware.WithLogging(middleware.OptionalAuth(svc, surveyHandler.Get)))

	// Respondents (public)
	mux.HandleFunc("POST /api/surveys/{id}/responses", middleware.WithLogging(responseHandler.Submit))
	mux.HandleFunc("POST /api/responses", middleware.WithLogging(responseHandler.Submit))

	// Templates (public)
	mux.HandleFunc("GET /api/templates", middleware.WithLogging(templateHandler.List))
	mux.HandleFunc("GET /api/templates/{id}", middleware.WithLogging(templateHandler.Get))

	// Administration
	mux.HandleFunc("GET /api/admin/users", admin(adminHandler.ListUsers))
	mux.HandleFunc("POST /api/admin/users", admin(adminHandler.CreateUser))
	mux.HandleFunc("DELETE /api/admin/users/{id}", admin(adminHandler.DeleteUser))
	mux.HandleFunc("PATCH /api/admin/users/{id}/verification", admin(adminHandler.SetVerification))
	mux.HandleFunc("PATCH /api/admin/users/{id}/password", admin(adminHandler.ResetPassword))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Survetic API v1"))
	})

	return middleware.Recover(middleware.CORS(mux))
}
