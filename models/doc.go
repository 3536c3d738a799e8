// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API,
together with the validation rules applied to them.

# Request Types

Types for parsing incoming JSON (camelCase keys):

  - RegisterRequest: email, password, firstName, lastName
  - LoginRequest: email, password
  - UpdateProfileRequest / ChangePasswordRequest
  - CreateSurveyRequest / UpdateSurveyRequest (partial, pointer fields)
  - CreateFromTemplateRequest: templateId, title
  - SubmitResponseRequest: answers (or responses), isComplete
  - AdminCreateUserRequest / SetVerificationRequest / ResetPasswordRequest

# Domain Types

  - User: account record; password and verification hashes never marshal
  - Survey / PublicSurvey: a survey and the respondent-facing view of it
  - Question: one of multiple-choice, text-input, rating, dropdown
  - Response / Answer: a submission and its per-question values
  - SurveyStats / QuestionStats: aggregates for the owner dashboard
  - Template: a starter survey from the built-in catalog

# Validation

Validate runs go-playground/validator struct tags and reports the first
failure as an apperr validation error, naming fields by their JSON keys:

	if err := models.Validate(req); err != nil {
		middleware.WriteError(w, err)
		return
	}

Question lists and answers have rules that tags can't express:

  - choice and dropdown questions need 1 to 50 unique options
  - text-input questions take no options and no rating scale
  - rating questions default to a scale of 5 and allow 2 to 10
  - answers must reference known questions, at most once each
  - a complete response must answer every required question

NormalizeQuestions and NormalizeAnswers enforce those.
*/
package models
