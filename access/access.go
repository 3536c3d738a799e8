// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package access decides whether a caller may act on a survey or on the
// admin surface. Handlers ask the Guard before touching data so the rules
// live in one place.
package access

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danielhkuo/survetic/apperr"
	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/store"
)

const msgSurveyNotFound = "Survey not found"

type Guard struct {
	surveys *store.Surveys
}

func NewGuard(db *sql.DB) *Guard {
	return &Guard{surveys: store.NewSurveys(db)}
}

// RequireUser fails when there is no authenticated caller.
func RequireUser(caller *models.User) error {
	if caller == nil {
		return apperr.Unauthorized("Authentication required")
	}
	return nil
}

// RequireAdmin fails for anonymous callers (401) and non-admins (403).
func RequireAdmin(caller *models.User) error {
	if err := RequireUser(caller); err != nil {
		return err
	}
	if !caller.IsAdmin {
		return apperr.Forbidden("Admin access required")
	}
	return nil
}

// OwnedSurvey loads a survey the caller owns. A survey owned by someone
// else is reported exactly like a missing one.
func (g *Guard) OwnedSurvey(ctx context.Context, caller *models.User, id string) (*models.Survey, error) {
	if err := RequireUser(caller); err != nil {
		return nil, err
	}

	s, err := g.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != caller.ID {
		return nil, apperr.NotFound(msgSurveyNotFound)
	}
	return s, nil
}

// PublicSurvey loads a survey anyone may see and answer. Drafts are
// reported as missing.
func (g *Guard) PublicSurvey(ctx context.Context, id string) (*models.Survey, error) {
	s, err := g.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsPublished {
		return nil, apperr.NotFound(msgSurveyNotFound)
	}
	return s, nil
}

// UpdateOwned applies p to a survey the caller owns. The ownership check
// and the write are one statement.
func (g *Guard) UpdateOwned(ctx context.Context, caller *models.User, id string, p store.SurveyPatch) (*models.Survey, error) {
	if err := RequireUser(caller); err != nil {
		return nil, err
	}

	s, err := g.surveys.Update(ctx, id, caller.ID, p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(msgSurveyNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to update survey", err)
	}
	return s, nil
}

// DeleteOwned removes a survey the caller owns, with its responses.
func (g *Guard) DeleteOwned(ctx context.Context, caller *models.User, id string) error {
	if err := RequireUser(caller); err != nil {
		return err
	}

	err := g.surveys.Delete(ctx, id, caller.ID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msgSurveyNotFound)
	}
	if err != nil {
		return apperr.Internal("Failed to delete survey", err)
	}
	return nil
}

func (g *Guard) load(ctx context.Context, id string) (*models.Survey, error) {
	if id == "" {
		return nil, apperr.NotFound(msgSurveyNotFound)
	}
	s, err := g.surveys.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(msgSurveyNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("Failed to fetch survey", err)
	}
	return s, nil
}
