// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Authentication

Bearer tokens are read from the Authorization header, or from a token
query parameter for links such as CSV downloads:

	mux.HandleFunc("GET /api/surveys", middleware.RequireAuth(svc, h.List))
	mux.HandleFunc("GET /api/surveys/{id}", middleware.OptionalAuth(svc, h.Get))
	mux.HandleFunc("GET /api/admin/users", middleware.RequireAdmin(svc, h.ListUsers))

Handlers read the caller back with CurrentUser or CurrentIdentity.

# Request Logging

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs method, path, client IP, status, and duration_ms once per request.

# Recovery and CORS

	server := http.Server{
		Handler: middleware.Recover(middleware.CORS(mux)),
	}

# JSON Helpers

	var req models.CreateSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, survey)

WriteError maps apperr kinds onto HTTP statuses and hides internal causes.
*/
package middleware
