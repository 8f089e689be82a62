package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/certledger/certledger/internal/credential"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed catalog store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) FindQuizByID(ctx context.Context, id string) (*QuizDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var q QuizDefinition
	var description *string
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, topic, description, total_questions, passing_score, department, is_active, created_at
		 FROM quizzes
		 WHERE id = $1::uuid`,
		id,
	).Scan(&q.ID, &q.Topic, &description, &q.TotalQuestions, &q.PassingScore, &q.Department, &q.IsActive, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if description != nil {
		q.Description = *description
	}
	return &q, nil
}

func (s *PostgresStore) CreateQuiz(ctx context.Context, q QuizDefinition) (*QuizDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	q.Topic = strings.TrimSpace(q.Topic)
	if q.Topic == "" {
		return nil, fmt.Errorf("quiz topic is required")
	}
	if q.TotalQuestions == 0 {
		q.TotalQuestions = 15
	}
	if q.PassingScore == 0 {
		q.PassingScore = 60
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (topic, description, total_questions, passing_score, department, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id::text, created_at`,
		q.Topic,
		nullIfEmpty(q.Description),
		q.TotalQuestions,
		q.PassingScore,
		q.Department,
		q.IsActive,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert quiz: %w", err)
	}

	// Shadow certification event, once per topic.
	shadowName := credential.CertificateName(q.Topic)
	_, err = tx.Exec(ctx,
		`INSERT INTO events (name, description, date, is_public)
		 SELECT $1, $2, NOW(), FALSE
		 WHERE NOT EXISTS (SELECT 1 FROM events WHERE name = $1)`,
		shadowName,
		"Skill Assessment for "+q.Topic,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shadow event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &q, nil
}

func (s *PostgresStore) ListActiveQuizzes(ctx context.Context) ([]QuizDefinition, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, topic, description, total_questions, passing_score, department, is_active, created_at
		 FROM quizzes
		 WHERE is_active
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	return scanQuizzes(rows)
}

func (s *PostgresStore) FindActiveQuizzesMatching(ctx context.Context, patterns []string, limit int) ([]QuizDefinition, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, topic, description, total_questions, passing_score, department, is_active, created_at
		 FROM quizzes
		 WHERE is_active AND topic ILIKE ANY($1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		likePatterns(patterns),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	return scanQuizzes(rows)
}

func scanQuizzes(rows pgx.Rows) ([]QuizDefinition, error) {
	var out []QuizDefinition
	for rows.Next() {
		var q QuizDefinition
		var description *string
		if err := rows.Scan(&q.ID, &q.Topic, &description, &q.TotalQuestions, &q.PassingScore, &q.Department, &q.IsActive, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		if description != nil {
			q.Description = *description
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindUpcomingEventsMatching(ctx context.Context, patterns []string, limit int) ([]EventSummary, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, name, description, date, is_public
		 FROM events
		 WHERE date >= NOW() AND name ILIKE ANY($1)
		 ORDER BY date ASC
		 LIMIT $2`,
		likePatterns(patterns),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []EventSummary
	for rows.Next() {
		var e EventSummary
		var description *string
		if err := rows.Scan(&e.ID, &e.Name, &description, &e.Date, &e.IsPublic); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if description != nil {
			e.Description = *description
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// likePatterns wraps each pattern for ILIKE substring matching.
func likePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		out = append(out, "%"+p+"%")
	}
	return out
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
