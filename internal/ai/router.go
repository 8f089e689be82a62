package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router routes completion requests across registered providers, trying
// each in registration order until one succeeds.
type Router struct {
	providers map[string]Provider
	fallback  []string // ordered fallback chain
	budget    BudgetChecker
	mu        sync.RWMutex
}

// NewRouter creates a new AI router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the router.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	r.fallback = append(r.fallback, name)
}

// SetBudget enables token budget enforcement. Requests with a UserID are
// checked before dispatch and their usage recorded after.
func (r *Router) SetBudget(budget BudgetChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budget = budget
}

// Complete routes a request to the first available provider.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.budget != nil && req.UserID != "" {
		ok, err := r.budget.Check(req.UserID)
		if err != nil {
			return CompletionResponse{}, fmt.Errorf("check budget: %w", err)
		}
		if !ok {
			return CompletionResponse{}, ErrBudgetExceeded
		}
	}

	for _, name := range r.fallback {
		provider := r.providers[name]

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			slog.Warn("AI provider failed, trying next",
				"provider", name,
				"error", err,
			)
			continue
		}

		if r.budget != nil && req.UserID != "" {
			if err := r.budget.Record(req.UserID, resp.TotalTokens()); err != nil {
				slog.Warn("failed to record token usage",
					"user_id", req.UserID,
					"error", err,
				)
			}
		}

		slog.Debug("AI request completed",
			"provider", name,
			"model", resp.Model,
			"input_tokens", resp.InputTokens,
			"output_tokens", resp.OutputTokens,
		)
		return resp, nil
	}

	return CompletionResponse{}, fmt.Errorf("all AI providers failed")
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
