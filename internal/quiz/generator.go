package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/certledger/certledger/internal/ai"
)

// ErrGenerationFailed wraps any failure to produce a usable question,
// whether from the provider or from output that violates the contract.
var ErrGenerationFailed = errors.New("question generation failed")

// Generator produces one question on a topic at the requested difficulty,
// avoiding the concepts already covered in exclude. learnerEmail identifies
// whose token budget the generation counts against.
type Generator interface {
	Generate(ctx context.Context, learnerEmail, topic string, difficulty Difficulty, exclude []string) (*Question, error)
}

// LLMGenerator generates questions through the AI gateway.
type LLMGenerator struct {
	router *ai.Router
	model  string
}

// NewLLMGenerator creates a generator backed by the given router. An empty
// model uses each provider's default.
func NewLLMGenerator(router *ai.Router, model string) *LLMGenerator {
	return &LLMGenerator{router: router, model: model}
}

func (g *LLMGenerator) Generate(ctx context.Context, learnerEmail, topic string, difficulty Difficulty, exclude []string) (*Question, error) {
	prompt := buildQuestionPrompt(topic, difficulty, exclude)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt}},
		Model:    g.model,
		UserID:   learnerEmail,
	})
	if err != nil {
		// An exhausted budget is the caller's problem, not a
		// generation failure to retry.
		if errors.Is(err, ai.ErrBudgetExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	q, err := parseQuestion(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	q.Difficulty = difficulty
	return q, nil
}

func buildQuestionPrompt(topic string, difficulty Difficulty, exclude []string) string {
	return fmt.Sprintf(`Generate ONE multiple-choice question about %q.
Difficulty Level: %s.
DO NOT repeat these concepts: [%s].

Return ONLY valid JSON in this format:
{
    "question": "The question text",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": "The exact text of the correct option",
    "explanation": "Short explanation"
}`, topic, difficulty, strings.Join(exclude, " | "))
}

// parseQuestion validates raw model output and decodes it. Markdown code
// fences around the JSON are tolerated.
func parseQuestion(raw string) (*Question, error) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model output")
	}

	if err := validateQuestionJSON(cleaned); err != nil {
		return nil, err
	}

	var q Question
	if err := json.Unmarshal([]byte(cleaned), &q); err != nil {
		return nil, fmt.Errorf("decode question: %w", err)
	}

	// The schema cannot express this cross-field constraint.
	found := false
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("correctAnswer %q is not one of the options", q.CorrectAnswer)
	}
	return &q, nil
}

// cleanJSON strips markdown code fences that models often wrap around
// JSON payloads.
func cleanJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// MockGenerator is a test double for Generator.
type MockGenerator struct {
	Question *Question
	Err      error

	LastLearner    string
	LastTopic      string
	LastDifficulty Difficulty
	LastExclude    []string
}

func (m *MockGenerator) Generate(_ context.Context, learnerEmail, topic string, difficulty Difficulty, exclude []string) (*Question, error) {
	m.LastLearner = learnerEmail
	m.LastTopic = topic
	m.LastDifficulty = difficulty
	m.LastExclude = exclude
	if m.Err != nil {
		return nil, m.Err
	}
	q := *m.Question
	q.Difficulty = difficulty
	return &q, nil
}
