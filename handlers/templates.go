// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/survetic/middleware"
	"github.com/danielhkuo/survetic/templates"
)

type TemplateHandler struct {
	catalog *templates.Catalog
}

func NewTemplateHandler(catalog *templates.Catalog) *TemplateHandler {
	return &TemplateHandler{catalog: catalog}
}

// List handles GET /api/templates?category=...&q=...
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	middleware.JSONResponse(w, http.StatusOK, h.catalog.List(q.Get("category"), q.Get("q")))
}

// Get handles GET /api/templates/{id}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.catalog.Get(r.PathValue("id"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Template not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, t)
}
