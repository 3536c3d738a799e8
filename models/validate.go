// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/survetic/apperr"
)

const (
	maxQuestions   = 200
	maxTextAnswer  = 5000
	minRatingScale = 2
	maxRatingScale = 10
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags on v and returns a validation error naming
// the first offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal("Validation failed", err)
	}
	return apperr.Validation(describe(verrs[0]))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	// Drop the root struct name: "CreateSurveyRequest.questions[0].title"
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hexcolor":
		return field + " must be a hex color"
	default:
		return field + " is invalid"
	}
}

// NormalizeQuestions validates a question list and fills defaults. The
// returned slice is never nil.
func NormalizeQuestions(questions []Question) ([]Question, error) {
	if len(questions) > maxQuestions {
		return nil, apperr.Validationf("a survey may have at most %d questions", maxQuestions)
	}

	out := make([]Question, 0, len(questions))
	seen := make(map[string]bool, len(questions))

	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				return nil, apperr.Validationf("questions[%d]: %s", i, describe(verrs[0]))
			}
			return nil, apperr.Internal("Validation failed", err)
		}
		if seen[q.ID] {
			return nil, apperr.Validationf("questions[%d]: duplicate question id %q", i, q.ID)
		}
		seen[q.ID] = true

		if err := checkShape(&q); err != nil {
			return nil, apperr.Validationf("questions[%d]: %s", i, err.Error())
		}
		out = append(out, q)
	}

	return out, nil
}

// checkShape enforces the per-type fields of a question.
func checkShape(q *Question) error {
	switch q.Type {
	case QuestionMultipleChoice, QuestionDropdown:
		if len(q.Options) == 0 {
			return fmt.Errorf("%s questions need at least one option", q.Type)
		}
		if q.RatingScale != 0 {
			return fmt.Errorf("%s questions cannot have a rating scale", q.Type)
		}
		seen := make(map[string]bool, len(q.Options))
		for _, opt := range q.Options {
			if seen[opt] {
				return fmt.Errorf("duplicate option %q", opt)
			}
			seen[opt] = true
		}
	case QuestionTextInput:
		if len(q.Options) > 0 || q.RatingScale != 0 {
			return errors.New("text-input questions take neither options nor a rating scale")
		}
	case QuestionRating:
		if len(q.Options) > 0 {
			return errors.New("rating questions cannot have options")
		}
		if q.RatingScale == 0 {
			q.RatingScale = DefaultRatingScale
		}
		if q.RatingScale < minRatingScale || q.RatingScale > maxRatingScale {
			return fmt.Errorf("ratingScale must be between %d and %d", minRatingScale, maxRatingScale)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}

// NormalizeAnswers checks answers against the survey's questions and
// returns them in compact form. When complete is set every required
// question must carry an answer.
func NormalizeAnswers(survey *Survey, answers []Answer, complete bool) ([]Answer, error) {
	out := make([]Answer, 0, len(answers))
	answered := make(map[string]bool, len(answers))

	for i, a := range answers {
		if a.QuestionID == "" {
			return nil, apperr.Validationf("answers[%d]: questionId is required", i)
		}
		q, ok := survey.Question(a.QuestionID)
		if !ok {
			return nil, apperr.Validationf("answers[%d]: unknown question %q", i, a.QuestionID)
		}
		if _, dup := answered[a.QuestionID]; dup {
			return nil, apperr.Validationf("answers[%d]: question %q answered twice", i, a.QuestionID)
		}

		raw := bytes.TrimSpace(a.Answer)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil, apperr.Validationf("answers[%d]: answer is required", i)
		}

		filled, err := checkAnswer(q, raw)
		if err != nil {
			return nil, apperr.Validationf("answers[%d]: %s", i, err.Error())
		}
		answered[a.QuestionID] = filled

		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, apperr.Validationf("answers[%d]: invalid JSON", i)
		}
		out = append(out, Answer{QuestionID: a.QuestionID, Answer: compact.Bytes()})
	}

	if complete {
		for _, q := range survey.Questions {
			if q.Required && !answered[q.ID] {
				return nil, apperr.Validationf("question %q is required", q.ID)
			}
		}
	}

	return out, nil
}

// checkAnswer decodes raw according to the question type. filled is false
// for a blank text answer.
func checkAnswer(q Question, raw []byte) (filled bool, err error) {
	switch q.Type {
	case QuestionTextInput:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, errors.New("answer must be text")
		}
		if utf8.RuneCountInString(s) > maxTextAnswer {
			return false, fmt.Errorf("answer must be at most %d characters", maxTextAnswer)
		}
		return strings.TrimSpace(s) != "", nil

	case QuestionMultipleChoice, QuestionDropdown:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, errors.New("answer must be one of the options")
		}
		for _, opt := range q.Options {
			if opt == s {
				return true, nil
			}
		}
		return false, fmt.Errorf("%q is not an option", s)

	case QuestionRating:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return false, errors.New("answer must be a whole number")
		}
		scale := q.RatingScale
		if scale == 0 {
			scale = DefaultRatingScale
		}
		if n < 1 || n > scale {
			return false, fmt.Errorf("rating must be between 1 and %d", scale)
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown question type %q", q.Type)
}
