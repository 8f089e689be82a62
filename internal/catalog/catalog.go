// Package catalog holds the quiz and event definitions learners can be
// pointed at, with matching queries used by the recommendation engine.
package catalog

import (
	"context"
	"errors"
	"time"
)

// ErrQuizNotFound is returned when a quiz id matches nothing.
var ErrQuizNotFound = errors.New("quiz not found")

// QuizDefinition is an instructor-created adaptive quiz.
type QuizDefinition struct {
	ID             string    `json:"id"`
	Topic          string    `json:"topic"`
	Description    string    `json:"description,omitempty"`
	TotalQuestions int       `json:"totalQuestions"`
	PassingScore   int       `json:"passingScore"` // percentage 0-100
	Department     string    `json:"department"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// EventSummary is the slice of an event the recommendation engine needs.
type EventSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	IsPublic    bool      `json:"isPublic"`
}

// Store provides quiz and event lookups.
type Store interface {
	// FindQuizByID returns a quiz definition or ErrQuizNotFound.
	FindQuizByID(ctx context.Context, id string) (*QuizDefinition, error)

	// CreateQuiz persists a new quiz and its shadow certification event,
	// returning the quiz with ID and CreatedAt set. The shadow event gives
	// the certificate pipeline an event to attach issued credentials to;
	// it is created once per topic.
	CreateQuiz(ctx context.Context, q QuizDefinition) (*QuizDefinition, error)

	// ListActiveQuizzes returns all active quizzes, newest first.
	ListActiveQuizzes(ctx context.Context) ([]QuizDefinition, error)

	// FindActiveQuizzesMatching returns active quizzes whose topic
	// mentions any of the patterns (case-insensitive substring),
	// capped at limit.
	FindActiveQuizzesMatching(ctx context.Context, patterns []string, limit int) ([]QuizDefinition, error)

	// FindUpcomingEventsMatching returns future events whose name mentions
	// any of the patterns (case-insensitive substring), capped at limit.
	FindUpcomingEventsMatching(ctx context.Context, patterns []string, limit int) ([]EventSummary, error)
}
