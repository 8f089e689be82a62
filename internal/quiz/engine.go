package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/certledger/certledger/internal/audit"
	"github.com/certledger/certledger/internal/catalog"
	"github.com/certledger/certledger/internal/credential"
	"github.com/certledger/certledger/internal/roster"
)

// ErrSessionComplete is returned by NextQuestion once a session already
// holds answers for every question.
var ErrSessionComplete = errors.New("quiz session complete")

// EngineConfig holds dependencies for the quiz engine.
type EngineConfig struct {
	Quizzes     catalog.Store
	Credentials credential.Store
	Issuer      credential.Issuer
	Generator   Generator
	Directory   roster.Directory
	Events      audit.Logger
}

// Engine drives quiz sessions end to end.
type Engine struct {
	quizzes     catalog.Store
	credentials credential.Store
	issuer      credential.Issuer
	generator   Generator
	directory   roster.Directory
	events      audit.Logger
}

// NewEngine creates a new quiz engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Quizzes == nil {
		return nil, fmt.Errorf("quiz store is required")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("question generator is required")
	}

	issuer := cfg.Issuer
	if issuer == nil {
		issuer = credential.DisabledIssuer{}
	}
	directory := cfg.Directory
	if directory == nil {
		directory = roster.NewMemoryDirectory(nil)
	}
	events := cfg.Events
	if events == nil {
		events = audit.NopLogger{}
	}

	return &Engine{
		quizzes:     cfg.Quizzes,
		credentials: cfg.Credentials,
		issuer:      issuer,
		generator:   cfg.Generator,
		directory:   directory,
		events:      events,
	}, nil
}

// GetQuizDetails returns the quiz metadata plus whether the learner has
// already earned its credential.
func (e *Engine) GetQuizDetails(ctx context.Context, quizID, learnerEmail string) (*Details, error) {
	q, err := e.quizzes.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	details := &Details{
		Topic:          q.Topic,
		TotalQuestions: q.TotalQuestions,
		PassingScore:   q.PassingScore,
	}

	certName := credential.CertificateName(q.Topic)
	existing, err := e.credentials.FindOne(ctx, certName, learnerEmail)
	switch {
	case err == nil:
		details.HasPassed = true
		details.CertificateID = existing.CertificateID
	case errors.Is(err, credential.ErrNotFound):
		// first attempt
	default:
		return nil, fmt.Errorf("check pass status: %w", err)
	}
	return details, nil
}

// QuizStatus pairs a quiz definition with one learner's pass status.
type QuizStatus struct {
	catalog.QuizDefinition
	HasPassed     bool   `json:"hasPassed"`
	CertificateID string `json:"certificateId,omitempty"`
}

// ListQuizzes returns all active quizzes annotated with whether the
// learner already holds each quiz's credential.
func (e *Engine) ListQuizzes(ctx context.Context, learnerEmail string) ([]QuizStatus, error) {
	quizzes, err := e.quizzes.ListActiveQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]QuizStatus, 0, len(quizzes))
	for _, q := range quizzes {
		status := QuizStatus{QuizDefinition: q}

		existing, err := e.credentials.FindOne(ctx, credential.CertificateName(q.Topic), learnerEmail)
		switch {
		case err == nil:
			status.HasPassed = true
			status.CertificateID = existing.CertificateID
		case errors.Is(err, credential.ErrNotFound):
		default:
			return nil, fmt.Errorf("check pass status: %w", err)
		}
		out = append(out, status)
	}
	return out, nil
}

// NextQuestion generates the next question for an in-flight session. The
// answer history determines the difficulty and supplies the concepts the
// generator must avoid; generation is billed to the learner's token
// budget.
func (e *Engine) NextQuestion(ctx context.Context, quizID, learnerEmail string, history []AnswerRecord) (*Question, error) {
	q, err := e.quizzes.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(history) >= q.TotalQuestions {
		return nil, ErrSessionComplete
	}

	difficulty := selectDifficulty(q.TotalQuestions, history)

	exclude := make([]string, 0, len(history))
	for _, h := range history {
		exclude = append(exclude, h.QuestionText)
	}

	question, err := e.generator.Generate(ctx, learnerEmail, q.Topic, difficulty, exclude)
	if err != nil {
		return nil, err
	}

	slog.Debug("question generated",
		"quiz_id", quizID,
		"topic", q.Topic,
		"difficulty", difficulty,
		"position", len(history),
	)
	return question, nil
}

// SubmitQuiz grades a completed session. A passing score issues a
// credential exactly once per learner and topic; on-chain anchoring is
// best-effort and falls back to pending placeholders.
func (e *Engine) SubmitQuiz(ctx context.Context, quizID, learnerEmail string, score int) (*SubmitResult, error) {
	q, err := e.quizzes.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	percentage := float64(score) / float64(q.TotalQuestions) * 100

	e.logEvent(ctx, audit.Event{
		Action:      "quiz_submitted",
		Description: fmt.Sprintf("quiz %s submitted with %d/%d", quizID, score, q.TotalQuestions),
		Actor:       learnerEmail,
		Data:        map[string]any{"quiz_id": quizID, "score": score, "percentage": percentage},
	})

	if percentage < float64(q.PassingScore) {
		return &SubmitResult{
			Passed:     false,
			Message:    fmt.Sprintf("Score: %.1f%%. Required: %d%%.", percentage, q.PassingScore),
			Percentage: percentage,
		}, nil
	}

	certName := credential.CertificateName(q.Topic)

	existing, err := e.credentials.FindOne(ctx, certName, learnerEmail)
	switch {
	case err == nil:
		return &SubmitResult{
			Passed:        true,
			Message:       "You already have this certificate!",
			CertificateID: existing.CertificateID,
			Percentage:    percentage,
		}, nil
	case errors.Is(err, credential.ErrNotFound):
		// new credential
	default:
		return nil, fmt.Errorf("check existing credential: %w", err)
	}

	cert, err := e.issueCredential(ctx, certName, learnerEmail)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		Passed:        true,
		Message:       "Quiz Passed! Certificate Issued.",
		CertificateID: cert.CertificateID,
		Percentage:    percentage,
	}, nil
}

func (e *Engine) issueCredential(ctx context.Context, certName, learnerEmail string) (*credential.Credential, error) {
	now := time.Now()
	certHash := credential.HashFor(learnerEmail, certName, now)

	tokenID := credential.Pending
	txHash := credential.Pending
	receipt, err := e.issuer.Issue(ctx, learnerEmail, certHash)
	if err != nil {
		slog.Warn("credential anchoring failed, issuing with pending placeholders",
			"event", certName,
			"error", err,
		)
		e.logEvent(ctx, audit.Event{
			Action:      "issuance_anchor_failed",
			Description: "on-chain anchoring failed for " + certName,
			Actor:       learnerEmail,
		})
	} else {
		tokenID = receipt.TokenID
		txHash = receipt.TransactionHash
	}

	studentName, err := e.directory.Lookup(ctx, learnerEmail)
	if err != nil {
		slog.Warn("roster lookup failed", "email", learnerEmail, "error", err)
		studentName = learnerEmail
	}

	certID := credential.NewCertificateID()
	cert := credential.Credential{
		CertificateID:   certID,
		TokenID:         tokenID,
		CertificateHash: certHash,
		TransactionHash: txHash,
		StudentName:     studentName,
		StudentEmail:    learnerEmail,
		EventName:       certName,
		EventDate:       now,
		VerificationURL: "/verify/" + certID,
	}
	created, err := e.credentials.Create(ctx, cert)
	if err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}

	e.logEvent(ctx, audit.Event{
		Action:      "credential_issued",
		Description: certName + " issued to " + learnerEmail,
		Actor:       learnerEmail,
		Data:        map[string]any{"certificate_id": certID},
	})

	slog.Info("credential issued",
		"certificate_id", certID,
		"event", certName,
		"email", learnerEmail,
	)
	return created, nil
}

// logEvent records an audit event without letting audit failures affect
// the request.
func (e *Engine) logEvent(ctx context.Context, event audit.Event) {
	if err := e.events.Log(ctx, event); err != nil {
		slog.Warn("audit log failed", "action", event.Action, "error", err)
	}
}
