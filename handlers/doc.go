// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Survetic API.

# Handler Types

  - AuthHandler: registration, email verification, login, profile
  - SurveyHandler: survey authoring, publishing, and reporting
  - ResponseHandler: anonymous response submission
  - TemplateHandler: built-in template catalog
  - AdminHandler: user management

Handlers expect the router to have run the matching middleware: the caller
is read with middleware.CurrentUser and is nil on public routes.

# Survey Lifecycle

Surveys are created as drafts and only published surveys accept responses:

	POST /api/surveys                → Create
	POST /api/surveys/from-template  → CreateFromTemplate
	POST /api/surveys/{id}/publish   → Publish
	POST /api/surveys/{id}/responses → Submit (anonymous)
	GET  /api/surveys/{id}/stats     → Stats
	GET  /api/surveys/{id}/export    → Export (CSV)

A survey owned by someone else answers 404, never 403.

# Errors

Every failure is written through middleware.WriteError as
{"error", "message", "code"} with the status of its apperr kind.
*/
package handlers
