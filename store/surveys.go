// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/danielhkuo/survetic/models"
)

const surveyColumns = `id, user_id, title, description, is_published, questions, theme, created_at, updated_at`

type Surveys struct {
	db *sql.DB
}

func NewSurveys(db *sql.DB) *Surveys {
	return &Surveys{db: db}
}

func scanSurvey(row rowScanner) (*models.Survey, error) {
	var (
		s         models.Survey
		questions []byte
		theme     []byte
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.IsPublished,
		&questions, &theme, timestamp{&s.CreatedAt}, timestamp{&s.UpdatedAt})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return nil, fmt.Errorf("decode questions of survey %s: %w", s.ID, err)
	}
	if s.Questions == nil {
		s.Questions = []models.Question{}
	}
	if len(theme) > 0 {
		if err := json.Unmarshal(theme, &s.Theme); err != nil {
			return nil, fmt.Errorf("decode theme of survey %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create inserts s and stamps its timestamps.
func (st *Surveys) Create(ctx context.Context, s *models.Survey) error {
	if s.Questions == nil {
		s.Questions = []models.Question{}
	}
	questions, err := encodeJSON(s.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	theme, err := encodeJSON(s.Theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}

	ts := now()
	s.CreatedAt, s.UpdatedAt = ts, ts

	_, err = st.db.ExecContext(ctx, `
		INSERT INTO surveys (id, user_id, title, description, is_published, questions, theme, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.UserID, s.Title, s.Description, s.IsPublished, questions, theme, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert survey: %w", err)
	}
	return nil
}

func (st *Surveys) Get(ctx context.Context, id string) (*models.Survey, error) {
	s, err := scanSurvey(st.db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query survey: %w", err)
	}
	return s, nil
}

// ListByUser returns the user's surveys, most recently updated first.
func (st *Surveys) ListByUser(ctx context.Context, userID string) ([]models.Survey, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT `+surveyColumns+`
		FROM surveys
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query surveys: %w", err)
	}
	defer rows.Close()

	surveys := []models.Survey{}
	for rows.Next() {
		s, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, *s)
	}
	return surveys, rows.Err()
}

// SurveyPatch is a partial survey update; nil fields are left unchanged.
type SurveyPatch struct {
	Title       *string
	Description *string
	IsPublished *bool
	Questions   *[]models.Question
	Theme       *models.Theme
}

// Update applies p to the survey if userID owns it, in a single statement.
// A missing survey and someone else's survey both give ErrNotFound.
func (st *Surveys) Update(ctx context.Context, id, userID string, p SurveyPatch) (*models.Survey, error) {
	var questions, theme any
	if p.Questions != nil {
		q, err := encodeJSON(*p.Questions)
		if err != nil {
			return nil, fmt.Errorf("encode questions: %w", err)
		}
		questions = q
	}
	if p.Theme != nil {
		t, err := encodeJSON(*p.Theme)
		if err != nil {
			return nil, fmt.Errorf("encode theme: %w", err)
		}
		theme = t
	}

	s, err := scanSurvey(st.db.QueryRowContext(ctx, `
		UPDATE surveys SET
			title = COALESCE($1, title),
			description = COALESCE($2, description),
			is_published = COALESCE($3, is_published),
			questions = COALESCE($4, questions),
			theme = COALESCE($5, theme),
			updated_at = $6
		WHERE id = $7 AND user_id = $8
		RETURNING `+surveyColumns,
		nullable(p.Title), nullable(p.Description), nullable(p.IsPublished),
		questions, theme, now(), id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update survey: %w", err)
	}
	return s, nil
}

// Delete removes the survey if userID owns it. Responses cascade.
func (st *Surveys) Delete(ctx context.Context, id, userID string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM surveys WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	return expectOne(res)
}
