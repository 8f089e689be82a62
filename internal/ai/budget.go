package ai

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBudgetExceeded is returned when a user has no token budget remaining.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// BudgetChecker checks and records token usage against per-user budgets.
type BudgetChecker interface {
	// Check returns true if the user has budget remaining.
	Check(userID string) (bool, error)
	// Record records token usage for a user.
	Record(userID string, tokens int) error
	// Usage returns current usage and budget for a user.
	Usage(userID string) (used int64, budget int64, err error)
}

// InMemoryBudget is a simple in-memory budget tracker. A user with no
// budget set falls back to the default budget; with no default either,
// the user is unlimited.
type InMemoryBudget struct {
	mu            sync.RWMutex
	defaultBudget int64
	budgets       map[string]int64
	usage         map[string]int64
}

// NewInMemoryBudget creates a new in-memory budget tracker.
func NewInMemoryBudget() *InMemoryBudget {
	return &InMemoryBudget{
		budgets: make(map[string]int64),
		usage:   make(map[string]int64),
	}
}

// SetBudget sets the token budget for a user.
func (b *InMemoryBudget) SetBudget(userID string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[userID] = tokens
}

// SetDefaultBudget sets the budget applied to every user without an
// explicit one. Zero disables the default.
func (b *InMemoryBudget) SetDefaultBudget(tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultBudget = tokens
}

func (b *InMemoryBudget) Check(userID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget := b.budgetForLocked(userID)
	if budget == 0 {
		return true, nil
	}
	return b.usage[userID] < budget, nil
}

func (b *InMemoryBudget) Record(userID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[userID] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(userID string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.usage[userID], b.budgetForLocked(userID), nil
}

func (b *InMemoryBudget) budgetForLocked(userID string) int64 {
	if budget, ok := b.budgets[userID]; ok {
		return budget
	}
	return b.defaultBudget
}
