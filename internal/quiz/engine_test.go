package quiz_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/certledger/certledger/internal/audit"
	"github.com/certledger/certledger/internal/catalog"
	"github.com/certledger/certledger/internal/credential"
	"github.com/certledger/certledger/internal/quiz"
	"github.com/certledger/certledger/internal/roster"
)

const learner = "priya@example.edu"

type fixture struct {
	engine  *quiz.Engine
	quizzes *catalog.MemoryStore
	creds   *credential.MemoryStore
	gen     *quiz.MockGenerator
	events  *audit.MemoryLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		quizzes: catalog.NewMemoryStore(),
		creds:   credential.NewMemoryStore(),
		events:  audit.NewMemoryLogger(),
		gen: &quiz.MockGenerator{
			Question: &quiz.Question{
				Question:      "What is a closure?",
				Options:       []string{"a", "b", "c", "d"},
				CorrectAnswer: "a",
				Explanation:   "e",
			},
		},
	}

	engine, err := quiz.NewEngine(quiz.EngineConfig{
		Quizzes:     f.quizzes,
		Credentials: f.creds,
		Generator:   f.gen,
		Directory: roster.NewMemoryDirectory([]roster.Entry{
			{Name: "Priya Nair", Email: learner},
		}),
		Events: f.events,
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	f.engine = engine
	return f
}

func (f *fixture) createQuiz(t *testing.T, def catalog.QuizDefinition) *catalog.QuizDefinition {
	t.Helper()
	q, err := f.quizzes.CreateQuiz(context.Background(), def)
	if err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}
	return q
}

func TestEngine_GetQuizDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", IsActive: true})

	details, err := f.engine.GetQuizDetails(ctx, q.ID, learner)
	if err != nil {
		t.Fatalf("GetQuizDetails() error = %v", err)
	}
	if details.HasPassed {
		t.Error("learner should not have passed yet")
	}
	if details.TotalQuestions != 15 || details.PassingScore != 60 {
		t.Errorf("details = %+v", details)
	}

	// Pass the quiz, then details must reflect it.
	if _, err := f.engine.SubmitQuiz(ctx, q.ID, learner, 12); err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	details, err = f.engine.GetQuizDetails(ctx, q.ID, learner)
	if err != nil {
		t.Fatalf("GetQuizDetails() error = %v", err)
	}
	if !details.HasPassed || details.CertificateID == "" {
		t.Errorf("details after pass = %+v", details)
	}
}

func TestEngine_NextQuestion_DifficultyAndExclusions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", IsActive: true})

	// Onboarding phase.
	question, err := f.engine.NextQuestion(ctx, q.ID, learner, nil)
	if err != nil {
		t.Fatalf("NextQuestion() error = %v", err)
	}
	if question.Difficulty != quiz.Easy {
		t.Errorf("first question difficulty = %v, want Easy", question.Difficulty)
	}

	// A hot streak past onboarding escalates.
	history := []quiz.AnswerRecord{
		{QuestionText: "q1", IsCorrect: true},
		{QuestionText: "q2", IsCorrect: true},
		{QuestionText: "q3", IsCorrect: true},
		{QuestionText: "q4", IsCorrect: true},
		{QuestionText: "q5", IsCorrect: true},
	}
	question, err = f.engine.NextQuestion(ctx, q.ID, learner, history)
	if err != nil {
		t.Fatalf("NextQuestion() error = %v", err)
	}
	if question.Difficulty != quiz.Hard {
		t.Errorf("difficulty = %v, want Hard", question.Difficulty)
	}
	if len(f.gen.LastExclude) != 5 || f.gen.LastExclude[0] != "q1" {
		t.Errorf("exclusions = %v", f.gen.LastExclude)
	}
	if f.gen.LastLearner != learner {
		t.Errorf("generation billed to %q, want %q", f.gen.LastLearner, learner)
	}
}

func TestEngine_FullSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", TotalQuestions: 5, PassingScore: 60, IsActive: true})

	var history []quiz.AnswerRecord
	for {
		question, err := f.engine.NextQuestion(ctx, q.ID, learner, history)
		if errors.Is(err, quiz.ErrSessionComplete) {
			break
		}
		if err != nil {
			t.Fatalf("NextQuestion() error = %v after %d answers", err, len(history))
		}
		history = append(history, quiz.AnswerRecord{
			QuestionText: question.Question,
			IsCorrect:    true,
		})
		if len(history) > q.TotalQuestions {
			t.Fatalf("session served %d questions, exceeding total %d", len(history), q.TotalQuestions)
		}
	}
	if len(history) != q.TotalQuestions {
		t.Errorf("session served %d questions, want %d", len(history), q.TotalQuestions)
	}
}

func TestEngine_ListQuizzes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	passed := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", TotalQuestions: 6, PassingScore: 60, IsActive: true})
	f.createQuiz(t, catalog.QuizDefinition{Topic: "Python", IsActive: true})
	if _, err := f.engine.SubmitQuiz(ctx, passed.ID, learner, 6); err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}

	statuses, err := f.engine.ListQuizzes(ctx, learner)
	if err != nil {
		t.Fatalf("ListQuizzes() error = %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d quizzes, want 2", len(statuses))
	}
	for _, s := range statuses {
		switch s.Topic {
		case "React":
			if !s.HasPassed || s.CertificateID == "" {
				t.Errorf("React status = %+v, want passed with certificate", s)
			}
		case "Python":
			if s.HasPassed {
				t.Errorf("Python status = %+v, want not passed", s)
			}
		}
	}
}

func TestEngine_NextQuestion_SessionComplete(t *testing.T) {
	f := newFixture(t)
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", TotalQuestions: 3, PassingScore: 60, IsActive: true})

	history := []quiz.AnswerRecord{{IsCorrect: true}, {IsCorrect: true}, {IsCorrect: false}}
	_, err := f.engine.NextQuestion(context.Background(), q.ID, learner, history)
	if !errors.Is(err, quiz.ErrSessionComplete) {
		t.Errorf("NextQuestion() error = %v, want ErrSessionComplete", err)
	}
}

func TestEngine_NextQuestion_UnknownQuiz(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.NextQuestion(context.Background(), "missing", learner, nil)
	if !errors.Is(err, catalog.ErrQuizNotFound) {
		t.Errorf("NextQuestion() error = %v, want ErrQuizNotFound", err)
	}
}

func TestEngine_SubmitQuiz_Pass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", TotalQuestions: 6, PassingScore: 60, IsActive: true})

	result, err := f.engine.SubmitQuiz(ctx, q.ID, learner, 4)
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if !result.Passed {
		t.Fatalf("SubmitQuiz() = %+v, want passed", result)
	}
	if !strings.HasPrefix(result.CertificateID, "SKILL-") {
		t.Errorf("CertificateID = %q", result.CertificateID)
	}

	cert, err := f.creds.FindOne(ctx, "Certified: React", learner)
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if cert.StudentName != "Priya Nair" {
		t.Errorf("StudentName = %q, want roster name", cert.StudentName)
	}
	// No issuer configured, so anchoring fields hold placeholders.
	if cert.TokenID != credential.Pending || cert.TransactionHash != credential.Pending {
		t.Errorf("TokenID/TxHash = %q/%q, want pending placeholders", cert.TokenID, cert.TransactionHash)
	}
	if cert.VerificationURL != "/verify/"+cert.CertificateID {
		t.Errorf("VerificationURL = %q", cert.VerificationURL)
	}

	var actions []string
	for _, e := range f.events.Events() {
		actions = append(actions, e.Action)
	}
	want := []string{"quiz_submitted", "issuance_anchor_failed", "credential_issued"}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("audit action[%d] = %q, want %q", i, actions[i], want[i])
		}
	}
}

func TestEngine_SubmitQuiz_Fail(t *testing.T) {
	f := newFixture(t)
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", TotalQuestions: 6, PassingScore: 60, IsActive: true})

	result, err := f.engine.SubmitQuiz(context.Background(), q.ID, learner, 3)
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if result.Passed {
		t.Fatal("3/6 against a 60% bar should fail")
	}
	if result.Message != "Score: 50.0%. Required: 60%." {
		t.Errorf("Message = %q", result.Message)
	}
	if result.CertificateID != "" {
		t.Error("failed submission must not carry a certificate")
	}

	if _, err := f.creds.FindOne(context.Background(), "Certified: React", learner); !errors.Is(err, credential.ErrNotFound) {
		t.Errorf("no credential should exist after a fail, got err = %v", err)
	}
}

func TestEngine_SubmitQuiz_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "React", TotalQuestions: 6, PassingScore: 60, IsActive: true})

	first, err := f.engine.SubmitQuiz(ctx, q.ID, learner, 5)
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}

	second, err := f.engine.SubmitQuiz(ctx, q.ID, learner, 6)
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if !second.Passed {
		t.Error("repeat pass should still report passed")
	}
	if second.CertificateID != first.CertificateID {
		t.Errorf("CertificateID changed on repeat: %q vs %q", second.CertificateID, first.CertificateID)
	}
	if second.Message != "You already have this certificate!" {
		t.Errorf("Message = %q", second.Message)
	}

	creds, err := f.creds.FindByLearner(ctx, learner)
	if err != nil {
		t.Fatalf("FindByLearner() error = %v", err)
	}
	if len(creds) != 1 {
		t.Errorf("got %d credentials, want exactly 1", len(creds))
	}
}

type stubIssuer struct {
	receipt credential.IssueReceipt
	err     error
}

func (s stubIssuer) Issue(context.Context, string, string) (credential.IssueReceipt, error) {
	return s.receipt, s.err
}

func TestEngine_SubmitQuiz_AnchoredIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	engine, err := quiz.NewEngine(quiz.EngineConfig{
		Quizzes:     f.quizzes,
		Credentials: f.creds,
		Generator:   f.gen,
		Issuer:      stubIssuer{receipt: credential.IssueReceipt{TokenID: "42", TransactionHash: "0xabc"}},
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	q := f.createQuiz(t, catalog.QuizDefinition{Topic: "Solidity", TotalQuestions: 5, PassingScore: 60, IsActive: true})
	if _, err := engine.SubmitQuiz(ctx, q.ID, learner, 5); err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}

	cert, err := f.creds.FindOne(ctx, "Certified: Solidity", learner)
	if err != nil {
		t.Fatalf("FindOne() error = %v", err)
	}
	if cert.TokenID != "42" || cert.TransactionHash != "0xabc" {
		t.Errorf("anchoring fields = %q/%q", cert.TokenID, cert.TransactionHash)
	}
	if cert.CertificateHash == "" || cert.CertificateHash == credential.Pending {
		t.Errorf("CertificateHash = %q, want computed hash", cert.CertificateHash)
	}
}
