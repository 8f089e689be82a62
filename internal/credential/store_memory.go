package credential

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Credential
}

// NewMemoryStore creates a new in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) FindByLearner(_ context.Context, studentEmail string) ([]Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email := strings.ToLower(studentEmail)
	var out []Credential
	for _, c := range s.records {
		if c.StudentEmail == email {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindOne(_ context.Context, eventName, studentEmail string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email := strings.ToLower(studentEmail)
	for i := range s.records {
		if s.records[i].EventName == eventName && s.records[i].StudentEmail == email {
			c := s.records[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, c Credential) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.StudentEmail = strings.ToLower(c.StudentEmail)
	for i := range s.records {
		if s.records[i].EventName == c.EventName && s.records[i].StudentEmail == c.StudentEmail {
			return nil, fmt.Errorf("credential already exists for %s / %s", c.EventName, c.StudentEmail)
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.records = append(s.records, c)
	return &c, nil
}
