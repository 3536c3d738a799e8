// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Survetic API.

# Route Registration

NewRouter returns the full handler, with recovery and CORS applied:

	handler := router.NewRouter(db, cfg, mailer.New(cfg), sessions)

# Endpoints

Health:

	GET /health

Verification email link (redirects to the web app):

	GET /verify-email?token=

Accounts:

	POST  /api/auth/register            - Create an unverified account
	GET   /api/auth/verify-email?token= - Verify email
	POST  /api/auth/resend-verification - Send a new verification link
	POST  /api/auth/login               - Get a bearer token
	POST  /api/auth/logout              - Revoke the token (bearer)
	GET   /api/auth/user                - Own profile (bearer)
	PATCH /api/auth/profile             - Update names or email (bearer)
	PATCH /api/auth/password            - Change password (bearer)

Surveys (bearer, owner only):

	GET       /api/surveys
	POST      /api/surveys
	POST      /api/surveys/from-template
	GET       /api/surveys/{id}            - ?public=true needs no token
	PUT|PATCH /api/surveys/{id}            - Partial update
	DELETE    /api/surveys/{id}
	POST      /api/surveys/{id}/publish
	POST      /api/surveys/{id}/unpublish
	GET       /api/surveys/{id}/responses
	GET       /api/surveys/{id}/stats
	GET       /api/surveys/{id}/export     - CSV

Responses (public, published surveys only):

	POST /api/surveys/{id}/responses
	POST /api/responses                    - surveyId in the body

Templates (public):

	GET /api/templates?category=&q=
	GET /api/templates/{id}

Administration (bearer, admin only):

	GET    /api/admin/users
	POST   /api/admin/users
	DELETE /api/admin/users/{id}
	PATCH  /api/admin/users/{id}/verification
	PATCH  /api/admin/users/{id}/password
*/
package router
