// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/danielhkuo/survetic/models"
	"github.com/danielhkuo/survetic/testutil"
)

func TestFilename(t *testing.T) {
	if got := Filename("abc"); got != "survey-abc-responses.csv" {
		t.Errorf("Filename() = %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	survey := &models.Survey{ID: "s1", Questions: testutil.SampleQuestions()}
	at := time.Date(2025, 3, 1, 12, 30, 0, 0, time.FixedZone("EST", -5*3600))

	responses := []models.Response{
		{
			ID:          "r1",
			SubmittedAt: at,
			IsComplete:  true,
			Answers: []models.Answer{
				{QuestionID: "score", Answer: json.RawMessage(`4`)},
				{QuestionID: "color", Answer: json.RawMessage(`"Green"`)},
				{QuestionID: "why", Answer: json.RawMessage(`"Because, \"obviously\"\nit is"`)},
			},
		},
		{ID: "r2", SubmittedAt: at, IsComplete: false},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, survey, responses); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want 3", len(records))
	}

	wantHeader := []string{"Response ID", "Submitted At", "Is Complete",
		"Q1: Favorite color?", "Q2: Why?", "Q3: How likely are you to recommend us?", "Q4: Shirt size"}
	for i, h := range wantHeader {
		if records[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	want := []string{"r1", "2025-03-01T17:30:00Z", "true", "Green", "Because, \"obviously\"\nit is", "4", ""}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row1[%d] = %q, want %q", i, records[1][i], v)
		}
	}

	if records[2][2] != "false" || records[2][3] != "" {
		t.Errorf("row2 = %q", records[2])
	}
}

func TestWriteCSV_FormulaText(t *testing.T) {
	survey := &models.Survey{ID: "s1", Questions: testutil.SampleQuestions()}

	tests := []struct {
		answer string
		want   string
	}{
		{`"=HYPERLINK(\"http://evil\")"`, `'=HYPERLINK("http://evil")`},
		{`"+1+1"`, "'+1+1"},
		{`"-2"`, "'-2"},
		{`"@SUM(A1)"`, "'@SUM(A1)"},
		{`"plain"`, "plain"},
		{`""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			responses := []models.Response{{
				ID:      "r1",
				Answers: []models.Answer{{QuestionID: "why", Answer: json.RawMessage(tt.answer)}},
			}}

			var buf bytes.Buffer
			if err := WriteCSV(&buf, survey, responses); err != nil {
				t.Fatalf("WriteCSV() error = %v", err)
			}
			records, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("output is not valid CSV: %v", err)
			}
			if got := records[1][4]; got != tt.want {
				t.Errorf("cell = %q, want %q", got, tt.want)
			}
		})
	}

	// Ratings are numbers, not text, and stay as written
	if got := cell(json.RawMessage(`-1`)); got != "-1" {
		t.Errorf("cell(-1) = %q", got)
	}
}

func TestWriteCSV_NoResponses(t *testing.T) {
	var buf bytes.Buffer
	survey := &models.Survey{ID: "s1", Questions: testutil.SampleQuestions()[:1]}
	if err := WriteCSV(&buf, survey, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Response ID,Submitted At,Is Complete,Q1: Favorite color?\n" {
		t.Errorf("WriteCSV() = %q", got)
	}
}
