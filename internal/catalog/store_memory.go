package catalog

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/certledger/certledger/internal/credential"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	quizzes []QuizDefinition
	events  []EventSummary
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) FindQuizByID(_ context.Context, id string) (*QuizDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.quizzes {
		if s.quizzes[i].ID == id {
			q := s.quizzes[i]
			return &q, nil
		}
	}
	return nil, ErrQuizNotFound
}

func (s *MemoryStore) CreateQuiz(_ context.Context, q QuizDefinition) (*QuizDefinition, error) {
	if strings.TrimSpace(q.Topic) == "" {
		return nil, fmt.Errorf("quiz topic is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q.Topic = strings.TrimSpace(q.Topic)
	q.ID = generateID()
	q.CreatedAt = s.now()
	if q.TotalQuestions == 0 {
		q.TotalQuestions = 15
	}
	if q.PassingScore == 0 {
		q.PassingScore = 60
	}
	s.quizzes = append(s.quizzes, q)

	shadowName := credential.CertificateName(q.Topic)
	if !s.hasEventLocked(shadowName) {
		s.events = append(s.events, EventSummary{
			ID:          generateID(),
			Name:        shadowName,
			Description: "Skill Assessment for " + q.Topic,
			Date:        q.CreatedAt,
			IsPublic:    false,
		})
	}

	return &q, nil
}

// AddEvent seeds an event directly. Used by tests and bootstrap code.
func (s *MemoryStore) AddEvent(e EventSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = generateID()
	}
	s.events = append(s.events, e)
}

func (s *MemoryStore) ListActiveQuizzes(_ context.Context) ([]QuizDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []QuizDefinition
	for i := len(s.quizzes) - 1; i >= 0; i-- {
		if s.quizzes[i].IsActive {
			out = append(out, s.quizzes[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) FindActiveQuizzesMatching(_ context.Context, patterns []string, limit int) ([]QuizDefinition, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []QuizDefinition
	for _, q := range s.quizzes {
		if len(out) == limit {
			break
		}
		if q.IsActive && matchesAny(q.Topic, patterns) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindUpcomingEventsMatching(_ context.Context, patterns []string, limit int) ([]EventSummary, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var out []EventSummary
	for _, e := range s.events {
		if len(out) == limit {
			break
		}
		if !e.Date.Before(now) && matchesAny(e.Name, patterns) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) hasEventLocked(name string) bool {
	for i := range s.events {
		if s.events[i].Name == name {
			return true
		}
	}
	return false
}

func matchesAny(text string, patterns []string) bool {
	lower := strings.ToLower(text)
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func generateID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return fmt.Sprintf("%x", b)
}
