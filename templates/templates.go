// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package templates serves the built-in survey templates embedded from
// catalog.yaml.
package templates

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/survetic/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is an ordered, read-only set of templates.
type Catalog struct {
	templates []models.Template
	byID      map[string]int
}

// Load parses a catalog and checks every template's questions the same way
// user-submitted questions are checked.
func Load(data []byte) (*Catalog, error) {
	var doc struct {
		Templates []models.Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(doc.Templates))}
	for _, t := range doc.Templates {
		if t.ID == "" || t.Title == "" {
			return nil, fmt.Errorf("template %q: id and title are required", t.ID)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		if err := models.Validate(t.Theme); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
		qs, err := models.NormalizeQuestions(t.Questions)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
		t.Questions = qs

		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests rule out.
func Default() *Catalog {
	c, err := Load(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// List returns templates in catalog order, optionally filtered by category
// (case-insensitive) and a search string matched against title and
// description.
func (c *Catalog) List(category, search string) []models.Template {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Template, 0, len(c.templates))
	for _, t := range c.templates {
		if category != "" && !strings.EqualFold(category, t.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, clone(t))
	}
	return out
}

func (c *Catalog) Get(id string) (models.Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Template{}, false
	}
	return clone(c.templates[i]), true
}

// clone copies the question slice so callers can't mutate the catalog.
func clone(t models.Template) models.Template {
	qs := make([]models.Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	t.Questions = qs
	return t
}
