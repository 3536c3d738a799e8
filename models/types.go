// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Question types
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTextInput      QuestionType = "text-input"
	QuestionRating         QuestionType = "rating"
	QuestionDropdown       QuestionType = "dropdown"
)

const DefaultRatingScale = 5

// Request types

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,max=255,email"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" validate:"required,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,max=255"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=255"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=255"`
	Email     *string `json:"email" validate:"omitempty,max=255,email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=255"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type CreateSurveyRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=2000"`
	IsPublished bool       `json:"isPublished"`
	Questions   []Question `json:"questions"`
	Theme       Theme      `json:"theme"`
}

// UpdateSurveyRequest is a partial update; nil fields are left unchanged.
type UpdateSurveyRequest struct {
	Title       *string     `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string     `json:"description" validate:"omitempty,max=2000"`
	IsPublished *bool       `json:"isPublished"`
	Questions   *[]Question `json:"questions"`
	Theme       *Theme      `json:"theme"`
}

type CreateFromTemplateRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	Title      string `json:"title" validate:"max=255"`
}

// SubmitResponseRequest accepts answers under "answers" or, for older
// clients, "responses".
type SubmitResponseRequest struct {
	SurveyID   string   `json:"surveyId"`
	Answers    []Answer `json:"answers"`
	Responses  []Answer `json:"responses"`
	IsComplete *bool    `json:"isComplete"`
}

// AllAnswers returns whichever answer list the client sent.
func (r SubmitResponseRequest) AllAnswers() []Answer {
	if len(r.Answers) > 0 {
		return r.Answers
	}
	return r.Responses
}

type AdminCreateUserRequest struct {
	Email      string `json:"email" validate:"required,max=255,email"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	FirstName  string `json:"firstName" validate:"max=255"`
	LastName   string `json:"lastName" validate:"max=255"`
	IsAdmin    bool   `json:"isAdmin"`
	IsVerified *bool  `json:"isVerified"`
}

type SetVerificationRequest struct {
	IsVerified *bool `json:"isVerified" validate:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Response types

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type SubmitResponseResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Domain types

type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	PasswordHash          string    `json:"-"`
	IsVerified            bool      `json:"isVerified"`
	VerificationTokenHash *string   `json:"-"` // Never expose in JSON
	IsAdmin               bool      `json:"isAdmin"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type Theme struct {
	PrimaryColor string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	FontFamily   string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty" validate:"omitempty,max=100"`
}

type Question struct {
	ID          string       `json:"id" yaml:"id" validate:"required,max=100"`
	Type        QuestionType `json:"type" yaml:"type" validate:"required,oneof=multiple-choice text-input rating dropdown"`
	Title       string       `json:"title" yaml:"title" validate:"required,max=500"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty" validate:"max=2000"`
	Required    bool         `json:"required" yaml:"required"`
	Options     []string     `json:"options,omitempty" yaml:"options,omitempty" validate:"omitempty,max=50,dive,required,max=200"`
	RatingScale int          `json:"ratingScale,omitempty" yaml:"ratingScale,omitempty"`
}

type Survey struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsPublished bool       `json:"isPublished"`
	Questions   []Question `json:"questions"`
	Theme       Theme      `json:"theme"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// PublicSurvey is what anonymous respondents see.
type PublicSurvey struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	Theme       Theme      `json:"theme"`
}

func (s *Survey) Public() PublicSurvey {
	return PublicSurvey{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Questions:   s.Questions,
		Theme:       s.Theme,
	}
}

// Question looks up a question by id.
func (s *Survey) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type Answer struct {
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
}

type Response struct {
	ID          string    `json:"id"`
	SurveyID    string    `json:"surveyId"`
	Answers     []Answer  `json:"answers"`
	IsComplete  bool      `json:"isComplete"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Stats types

type SurveyStats struct {
	SurveyID          string          `json:"surveyId"`
	TotalResponses    int             `json:"totalResponses"`
	CompleteResponses int             `json:"completeResponses"`
	CompletionRate    float64         `json:"completionRate"` // percent
	LastSubmittedAt   *time.Time      `json:"lastSubmittedAt,omitempty"`
	Questions         []QuestionStats `json:"questions"`
}

type QuestionStats struct {
	QuestionID    string         `json:"questionId"`
	Title         string         `json:"title"`
	Type          QuestionType   `json:"type"`
	Answered      int            `json:"answered"`
	OptionCounts  map[string]int `json:"optionCounts,omitempty"`
	RatingCounts  map[int]int    `json:"ratingCounts,omitempty"`
	AverageRating *float64       `json:"averageRating,omitempty"`
	TextAnswers   int            `json:"textAnswers,omitempty"`
}

// Template types

type Template struct {
	ID            string     `json:"id" yaml:"id"`
	Title         string     `json:"title" yaml:"title"`
	Description   string     `json:"description" yaml:"description"`
	Category      string     `json:"category" yaml:"category"`
	EstimatedTime string     `json:"estimatedTime" yaml:"estimatedTime"`
	Theme         Theme      `json:"theme" yaml:"theme"`
	Questions     []Question `json:"questions" yaml:"questions"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
