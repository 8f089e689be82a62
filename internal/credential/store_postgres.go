package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed credential store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

const credentialColumns = `certificate_id, token_id, certificate_hash, transaction_hash,
	 student_name, student_email, event_name, event_date, verification_url, created_at`

func (s *PostgresStore) FindByLearner(ctx context.Context, studentEmail string) ([]Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+credentialColumns+`
		 FROM credentials
		 WHERE student_email = $1
		 ORDER BY created_at ASC`,
		strings.ToLower(studentEmail),
	)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var out []Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindOne(ctx context.Context, eventName, studentEmail string) (*Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT `+credentialColumns+`
		 FROM credentials
		 WHERE event_name = $1 AND student_email = $2
		 LIMIT 1`,
		eventName,
		strings.ToLower(studentEmail),
	)
	if err != nil {
		return nil, fmt.Errorf("query credential: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query credential: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanCredential(rows)
}

func (s *PostgresStore) Create(ctx context.Context, c Credential) (*Credential, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if c.CertificateID == "" {
		return nil, fmt.Errorf("certificate_id is required")
	}
	c.StudentEmail = strings.ToLower(c.StudentEmail)

	err := s.pool.QueryRow(ctx,
		`INSERT INTO credentials (certificate_id, token_id, certificate_hash, transaction_hash,
		   student_name, student_email, event_name, event_date, verification_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		c.CertificateID,
		c.TokenID,
		c.CertificateHash,
		nullIfEmpty(c.TransactionHash),
		c.StudentName,
		c.StudentEmail,
		c.EventName,
		c.EventDate,
		c.VerificationURL,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}
	return &c, nil
}

func scanCredential(rows pgx.Rows) (*Credential, error) {
	var c Credential
	var txHash *string
	if err := rows.Scan(
		&c.CertificateID,
		&c.TokenID,
		&c.CertificateHash,
		&txHash,
		&c.StudentName,
		&c.StudentEmail,
		&c.EventName,
		&c.EventDate,
		&c.VerificationURL,
		&c.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	if txHash != nil {
		c.TransactionHash = *txHash
	}
	return &c, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
