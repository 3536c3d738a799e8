// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package stats aggregates a survey's responses.
package stats

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/danielhkuo/survetic/models"
)

// Compute tallies responses against the survey's current questions.
// Answers that no longer fit a question (an option that was removed, a
// rating above a reduced scale) are ignored.
func Compute(survey *models.Survey, responses []models.Response) models.SurveyStats {
	out := models.SurveyStats{
		SurveyID:       survey.ID,
		TotalResponses: len(responses),
		Questions:      make([]models.QuestionStats, 0, len(survey.Questions)),
	}

	for i := range responses {
		r := &responses[i]
		if r.IsComplete {
			out.CompleteResponses++
		}
		if out.LastSubmittedAt == nil || r.SubmittedAt.After(*out.LastSubmittedAt) {
			t := r.SubmittedAt
			out.LastSubmittedAt = &t
		}
	}
	if out.TotalResponses > 0 {
		out.CompletionRate = round(float64(out.CompleteResponses)/float64(out.TotalResponses)*100, 1)
	}

	// Index answers once: response -> question id -> raw answer
	indexed := make([]map[string]json.RawMessage, len(responses))
	for i, r := range responses {
		m := make(map[string]json.RawMessage, len(r.Answers))
		for _, a := range r.Answers {
			m[a.QuestionID] = a.Answer
		}
		indexed[i] = m
	}

	for _, q := range survey.Questions {
		out.Questions = append(out.Questions, question(q, indexed))
	}
	return out
}

func question(q models.Question, answers []map[string]json.RawMessage) models.QuestionStats {
	qs := models.QuestionStats{QuestionID: q.ID, Title: q.Title, Type: q.Type}

	switch q.Type {
	case models.QuestionMultipleChoice, models.QuestionDropdown:
		qs.OptionCounts = make(map[string]int, len(q.Options))
		for _, opt := range q.Options {
			qs.OptionCounts[opt] = 0
		}
		for _, m := range answers {
			var s string
			if raw, ok := m[q.ID]; !ok || json.Unmarshal(raw, &s) != nil {
				continue
			}
			if _, known := qs.OptionCounts[s]; known {
				qs.OptionCounts[s]++
				qs.Answered++
			}
		}

	case models.QuestionRating:
		scale := q.RatingScale
		if scale == 0 {
			scale = models.DefaultRatingScale
		}
		qs.RatingCounts = make(map[int]int, scale)
		for i := 1; i <= scale; i++ {
			qs.RatingCounts[i] = 0
		}
		sum := 0
		for _, m := range answers {
			var n int
			if raw, ok := m[q.ID]; !ok || json.Unmarshal(raw, &n) != nil {
				continue
			}
			if n < 1 || n > scale {
				continue
			}
			qs.RatingCounts[n]++
			qs.Answered++
			sum += n
		}
		if qs.Answered > 0 {
			avg := round(float64(sum)/float64(qs.Answered), 2)
			qs.AverageRating = &avg
		}

	case models.QuestionTextInput:
		for _, m := range answers {
			var s string
			if raw, ok := m[q.ID]; !ok || json.Unmarshal(raw, &s) != nil {
				continue
			}
			if strings.TrimSpace(s) != "" {
				qs.TextAnswers++
				qs.Answered++
			}
		}
	}

	return qs
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
