// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package templates

import (
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Load(catalogYAML)
	if err != nil {
		t.Fatalf("embedded catalog is invalid: %v", err)
	}

	all := c.List("", "")
	if len(all) != 5 {
		t.Fatalf("List() returned %d templates, want 5", len(all))
	}
	if all[0].ID != "customer-satisfaction" {
		t.Errorf("first template = %q, catalog order not kept", all[0].ID)
	}
	for _, tpl := range all {
		if len(tpl.Questions) == 0 || tpl.Category == "" || tpl.EstimatedTime == "" {
			t.Errorf("template %q is incomplete: %+v", tpl.ID, tpl)
		}
	}
}

func TestList_Filters(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		category string
		search   string
		want     []string
	}{
		{"category", "hr", "", []string{"employee-engagement"}},
		{"search title", "", "COURSE", []string{"course-evaluation"}},
		{"search description", "", "attendee", []string{"event-feedback"}},
		{"both", "Business", "event", nil},
		{"unknown category", "Sports", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.List(tt.category, tt.search)
			if len(got) != len(tt.want) {
				t.Fatalf("List(%q, %q) returned %d, want %d", tt.category, tt.search, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("List()[%d] = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestGet(t *testing.T) {
	c := Default()

	tpl, ok := c.Get("customer-satisfaction")
	if !ok {
		t.Fatal("Get() did not find customer-satisfaction")
	}
	if tpl.Questions[1].RatingScale != 10 {
		t.Errorf("recommendation scale = %d, want 10", tpl.Questions[1].RatingScale)
	}

	// Returned templates are copies
	tpl.Questions[2].Options[0] = "changed"
	again, _ := c.Get("customer-satisfaction")
	if again.Questions[2].Options[0] != "Quality" {
		t.Error("mutating a returned template changed the catalog")
	}

	if _, ok := c.Get("nope"); ok {
		t.Error("Get(nope) should not be found")
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad yaml", "templates: [", "parse"},
		{"missing id", "templates:\n  - title: X\n", "required"},
		{"duplicate", "templates:\n  - {id: a, title: A}\n  - {id: a, title: B}\n", "duplicate"},
		{"bad question", "templates:\n  - id: a\n    title: A\n    questions:\n      - {id: q, type: rating, title: Q, ratingScale: 50}\n", "template \"a\""},
		{"bad theme", "templates:\n  - id: a\n    title: A\n    theme: {primaryColor: red}\n", "primaryColor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
