// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package export renders survey responses as CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/danielhkuo/survetic/models"
)

const ContentType = "text/csv; charset=utf-8"

// Filename is the download name for a survey's export.
func Filename(surveyID string) string {
	return fmt.Sprintf("survey-%s-responses.csv", surveyID)
}

// WriteCSV writes one header row and one row per response. Question columns
// follow the survey's current question order; unanswered cells are empty.
func WriteCSV(w io.Writer, survey *models.Survey, responses []models.Response) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, 3+len(survey.Questions))
	header = append(header, "Response ID", "Submitted At", "Is Complete")
	for i, q := range survey.Questions {
		header = append(header, fmt.Sprintf("Q%d: %s", i+1, q.Title))
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range responses {
		byQuestion := make(map[string]json.RawMessage, len(r.Answers))
		for _, a := range r.Answers {
			byQuestion[a.QuestionID] = a.Answer
		}

		row[0] = r.ID
		row[1] = r.SubmittedAt.UTC().Format(time.RFC3339)
		row[2] = strconv.FormatBool(r.IsComplete)
		for i, q := range survey.Questions {
			row[3+i] = cell(byQuestion[q.ID])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write response %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cell unwraps JSON strings; anything else is written as its JSON text.
func cell(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return neutralize(s)
	}
	return string(raw)
}

// neutralize prefixes text a spreadsheet would evaluate as a formula.
func neutralize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
