// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/survetic/access"
	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/auth"
	"github.com/danielhkuo/survetic/middleware"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/store"
)

// ResponseHandler accepts anonymous submissions to published surveys.
type ResponseHandler struct {
	responses *store.Responses
	guard     *access.Guard
}

func NewResponseHandler(db *sql.DB) *ResponseHandler {
	return &ResponseHandler{
		responses: store.NewResponses(db),
		guard:     access.NewGuard(db),
	}
}

// Submit handles POST /api/surveys/{id}/responses and POST /api/responses.
// The path id wins over a surveyId in the body.
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitResponseRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	surveyID := r.PathValue("id")
	if surveyID == "" {
		surveyID = req.SurveyID
	}
	if surveyID == "" {
		middleware.WriteError(w, apperr.Validation("surveyId is required"))
		return
	}

	survey, err := h.guard.PublicSurvey(r.Context(), surveyID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	complete := true
	if req.IsComplete != nil {
		complete = *req.IsComplete
	}
	answers, err := models.NormalizeAnswers(survey, req.AllAnswers(), complete)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		middleware.WriteError(w, apperr.Internal("Failed to submit response", err))
		return
	}
	resp := &models.Response{
		ID:         id,
		SurveyID:   survey.ID,
		Answers:    answers,
		IsComplete: complete,
	}
	if err := h.responses.Create(r.Context(), resp); err != nil {
		middleware.WriteError(w, apperr.Internal("Failed to submit response", err))
		return
	}

	slog.Info("response submitted", "survey_id", survey.ID, "response_id", id, "complete", complete)
	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponseResponse{
		ID:      id,
		Message: "Response submitted successfully",
	})
}
