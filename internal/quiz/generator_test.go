package quiz_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/certledger/certledger/internal/ai"
	"github.com/certledger/certledger/internal/quiz"
)

const validQuestionJSON = `{
	"question": "What does the useState hook return?",
	"options": ["A tuple of state and setter", "A promise", "A reducer", "A ref"],
	"correctAnswer": "A tuple of state and setter",
	"explanation": "useState returns the current state and an update function."
}`

func generatorWith(response string) *quiz.LLMGenerator {
	router := ai.NewRouter()
	router.Register("mock", ai.NewMockProvider(response))
	return quiz.NewLLMGenerator(router, "")
}

func TestLLMGenerator_Generate(t *testing.T) {
	g := generatorWith(validQuestionJSON)

	q, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Medium, []string{"hooks basics"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if q.Difficulty != quiz.Medium {
		t.Errorf("Difficulty = %v, want Medium", q.Difficulty)
	}
	if len(q.Options) != 4 {
		t.Errorf("got %d options, want 4", len(q.Options))
	}
}

func TestLLMGenerator_Generate_StripsCodeFences(t *testing.T) {
	g := generatorWith("```json\n" + validQuestionJSON + "\n```")

	q, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Easy, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(q.Question, "useState") {
		t.Errorf("Question = %q", q.Question)
	}
}

func TestLLMGenerator_Generate_PromptIncludesExclusions(t *testing.T) {
	router := ai.NewRouter()
	mock := ai.NewMockProvider(validQuestionJSON)
	router.Register("mock", mock)
	g := quiz.NewLLMGenerator(router, "")

	_, err := g.Generate(context.Background(), "priya@example.edu", "Python", quiz.Hard, []string{"list comprehensions", "decorators"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	prompt := mock.LastRequest.Messages[0].Content
	if !strings.Contains(prompt, "list comprehensions | decorators") {
		t.Errorf("prompt missing exclusion list:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Difficulty Level: Hard") {
		t.Errorf("prompt missing difficulty:\n%s", prompt)
	}
}

func TestLLMGenerator_Generate_ContractViolations(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I cannot answer that."},
		{"empty output", "```json\n```"},
		{"three options", `{
			"question": "q", "options": ["a", "b", "c"],
			"correctAnswer": "a", "explanation": "e"
		}`},
		{"answer not among options", `{
			"question": "q", "options": ["a", "b", "c", "d"],
			"correctAnswer": "x", "explanation": "e"
		}`},
		{"missing explanation", `{
			"question": "q", "options": ["a", "b", "c", "d"],
			"correctAnswer": "a"
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := generatorWith(tt.response)
			_, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Easy, nil)
			if !errors.Is(err, quiz.ErrGenerationFailed) {
				t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
			}
		})
	}
}

func TestLLMGenerator_Generate_BillsLearner(t *testing.T) {
	router := ai.NewRouter()
	mock := ai.NewMockProvider(validQuestionJSON)
	router.Register("mock", mock)
	g := quiz.NewLLMGenerator(router, "")

	if _, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Easy, nil); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if mock.LastRequest.UserID != "priya@example.edu" {
		t.Errorf("UserID = %q, want learner email", mock.LastRequest.UserID)
	}
}

func TestLLMGenerator_Generate_BudgetExceeded(t *testing.T) {
	router := ai.NewRouter()
	router.Register("mock", ai.NewMockProvider(validQuestionJSON))

	budget := ai.NewInMemoryBudget()
	budget.SetDefaultBudget(1)
	router.SetBudget(budget)
	g := quiz.NewLLMGenerator(router, "")

	// The first generation fits the budget and records usage past it.
	if _, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Easy, nil); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Easy, nil)
	if !errors.Is(err, ai.ErrBudgetExceeded) {
		t.Errorf("Generate() error = %v, want ErrBudgetExceeded", err)
	}
	if errors.Is(err, quiz.ErrGenerationFailed) {
		t.Error("an exhausted budget must not read as a generation failure")
	}

	// Another learner is unaffected.
	if _, err := g.Generate(context.Background(), "arun@example.edu", "React", quiz.Easy, nil); err != nil {
		t.Fatalf("Generate() error = %v for a fresh learner", err)
	}
}

func TestLLMGenerator_Generate_ProviderFailure(t *testing.T) {
	router := ai.NewRouter()
	failing := ai.NewMockProvider("")
	failing.Err = errors.New("provider down")
	router.Register("mock", failing)
	g := quiz.NewLLMGenerator(router, "")

	_, err := g.Generate(context.Background(), "priya@example.edu", "React", quiz.Easy, nil)
	if !errors.Is(err, quiz.ErrGenerationFailed) {
		t.Errorf("Generate() error = %v, want ErrGenerationFailed", err)
	}
}
