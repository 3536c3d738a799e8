// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/survetic/access"
	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/auth"
	"github.com/danielhkuo/survetic/export"
	"github.com/danielhkuo/survetic/middleware"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/stats"
	"github.com/danielhkuo/survetic/store"
	"github.com/danielhkuo/survetic/templates"
)

type SurveyHandler struct {
	surveys   *store.Surveys
	responses *store.Responses
	guard     *access.Guard
	catalog   *templates.Catalog
}

// requireCaller returns the authenticated caller or writes a 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	caller := middleware.CurrentUser(r.Context())
	if err := access.RequireUser(caller); err != nil {
		middleware.WriteError(w, err)
		return nil, false
	}
	return caller, true
}

func NewSurveyHandler(db *sql.DB, catalog *templates.Catalog) *SurveyHandler {
	return &SurveyHandler{
		surveys:   store.NewSurveys(db),
		responses: store.NewResponses(db),
		guard:     access.NewGuard(db),
		catalog:   catalog,
	}
}

// List handles GET /api/surveys
// Only the caller's own surveys are returned.
func (h *SurveyHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	surveys, err := h.surveys.ListByUser(r.Context(), caller.ID)
	if err != nil {
		middleware.WriteError(w, apperr.Internal("Failed to fetch surveys", err))
		return
	}
	middleware.JSONResponse(w, http.StatusOK, surveys)
}

// Create handles POST /api/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := models.Validate(req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	questions, err := models.NormalizeQuestions(req.Questions)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.create(w, r, &models.Survey{
		Title:       req.Title,
		Description: req.Description,
		IsPublished: req.IsPublished,
		Questions:   questions,
		Theme:       req.Theme,
	})
}

// CreateFromTemplate handles POST /api/surveys/from-template
// The copy starts as a draft; the title defaults to the template's.
func (h *SurveyHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFromTemplateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := models.Validate(req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	tpl, ok := h.catalog.Get(req.TemplateID)
	if !ok {
		middleware.WriteError(w, apperr.NotFound("Template not found"))
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = tpl.Title
	}

	h.create(w, r, &models.Survey{
		Title:       title,
		Description: tpl.Description,
		Questions:   tpl.Questions,
		Theme:       tpl.Theme,
	})
}

// create stores s owned by the caller. The owner never comes from the
// request body.
func (h *SurveyHandler) create(w http.ResponseWriter, r *http.Request, s *models.Survey) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		middleware.WriteError(w, apperr.Internal("Failed to create survey", err))
		return
	}
	s.ID = id
	s.UserID = caller.ID

	if err := h.surveys.Create(r.Context(), s); err != nil {
		middleware.WriteError(w, apperr.Internal("Failed to create survey", err))
		return
	}

	slog.Info("survey created", "survey_id", s.ID, "user_id", caller.ID, "questions", len(s.Questions))
	middleware.JSONResponse(w, http.StatusCreated, s)
}

// Get handles GET /api/surveys/{id}
// With ?public=true anyone may read a published survey and gets the
// respondent view; otherwise the caller must own it.
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if public, _ := strconv.ParseBool(r.URL.Query().Get("public")); public {
		s, err := h.guard.PublicSurvey(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusOK, s.Public())
		return
	}

	s, err := h.guard.OwnedSurvey(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s)
}

// Update handles PUT and PATCH /api/surveys/{id}
// Both are partial: absent fields keep their stored values.
func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSurveyRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	if err := models.Validate(req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if req.Questions != nil {
		qs, err := models.NormalizeQuestions(*req.Questions)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		req.Questions = &qs
	}

	h.update(w, r, store.SurveyPatch{
		Title:       req.Title,
		Description: req.Description,
		IsPublished: req.IsPublished,
		Questions:   req.Questions,
		Theme:       req.Theme,
	})
}

// Publish handles POST /api/surveys/{id}/publish
func (h *SurveyHandler) Publish(w http.ResponseWriter, r *http.Request) {
	published := true
	h.update(w, r, store.SurveyPatch{IsPublished: &published})
}

// Unpublish handles POST /api/surveys/{id}/unpublish
func (h *SurveyHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	published := false
	h.update(w, r, store.SurveyPatch{IsPublished: &published})
}

func (h *SurveyHandler) update(w http.ResponseWriter, r *http.Request, p store.SurveyPatch) {
	id := r.PathValue("id")

	s, err := h.guard.UpdateOwned(r.Context(), middleware.CurrentUser(r.Context()), id, p)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if p.IsPublished != nil {
		slog.Info("survey publish state set", "survey_id", id, "published", *p.IsPublished)
	}
	middleware.JSONResponse(w, http.StatusOK, s)
}

// Delete handles DELETE /api/surveys/{id}
// The survey's responses go with it.
func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CurrentUser(r.Context())
	id := r.PathValue("id")

	if err := h.guard.DeleteOwned(r.Context(), caller, id); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("survey deleted", "survey_id", id, "user_id", caller.ID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Survey deleted successfully"})
}

// ownedResponses loads a survey the caller owns together with its responses.
func (h *SurveyHandler) ownedResponses(r *http.Request) (*models.Survey, []models.Response, error) {
	s, err := h.guard.OwnedSurvey(r.Context(), middleware.CurrentUser(r.Context()), r.PathValue("id"))
	if err != nil {
		return nil, nil, err
	}
	responses, err := h.responses.ListBySurvey(r.Context(), s.ID)
	if err != nil {
		return nil, nil, apperr.Internal("Failed to fetch responses", err)
	}
	return s, responses, nil
}

// Responses handles GET /api/surveys/{id}/responses
func (h *SurveyHandler) Responses(w http.ResponseWriter, r *http.Request) {
	_, responses, err := h.ownedResponses(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, responses)
}

// Stats handles GET /api/surveys/{id}/stats
func (h *SurveyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	s, responses, err := h.ownedResponses(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, stats.Compute(s, responses))
}

// Export handles GET /api/surveys/{id}/export
// The CSV is rendered into memory first so a failure can still be
// reported as JSON.
func (h *SurveyHandler) Export(w http.ResponseWriter, r *http.Request) {
	s, responses, err := h.ownedResponses(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, s, responses); err != nil {
		middleware.WriteError(w, apperr.Internal("Failed to export responses", err))
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(s.ID)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write export", "survey_id", s.ID, "error", err)
	}
}
