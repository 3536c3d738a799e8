// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/survetic/models"
)

type Responses struct {
	db *sql.DB
}

func NewResponses(db *sql.DB) *Responses {
	return &Responses{db: db}
}

// Create inserts r and stamps SubmittedAt. A survey deleted in the meantime
// surfaces as a foreign key error.
func (st *Responses) Create(ctx context.Context, r *models.Response) error {
	if r.Answers == nil {
		r.Answers = []models.Answer{}
	}
	answers, err := encodeJSON(r.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}

	r.SubmittedAt = now()
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO responses (id, survey_id, answers, is_complete, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.ID, r.SurveyID, answers, r.IsComplete, r.SubmittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// ListBySurvey returns a survey's responses in submission order.
func (st *Responses) ListBySurvey(ctx context.Context, surveyID string) ([]models.Response, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, survey_id, answers, is_complete, submitted_at
		FROM responses
		WHERE survey_id = $1
		ORDER BY submitted_at, id
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		var (
			r       models.Response
			answers []byte
		)
		if err := rows.Scan(&r.ID, &r.SurveyID, &answers, &r.IsComplete, timestamp{&r.SubmittedAt}); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		if err := json.Unmarshal(answers, &r.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of response %s: %w", r.ID, err)
		}
		if r.Answers == nil {
			r.Answers = []models.Answer{}
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
