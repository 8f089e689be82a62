package roster

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

// PostgresDirectory resolves learner names from the student_roster table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresDirectory(pool *pgxpool.Pool) (*PostgresDirectory, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresDirectory{pool: pool}, nil
}

func (d *PostgresDirectory) Lookup(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var name string
	err := d.pool.QueryRow(ctx,
		`SELECT name FROM student_roster WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return email, nil
		}
		return "", fmt.Errorf("lookup roster entry: %w", err)
	}
	return name, nil
}

// Import upserts roster entries, keyed by email.
func (d *PostgresDirectory) Import(ctx context.Context, entries []Entry) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO student_roster (name, email, usn, department, semester, year)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (email) DO UPDATE
			 SET name = EXCLUDED.name,
			     usn = EXCLUDED.usn,
			     department = EXCLUDED.department,
			     semester = EXCLUDED.semester,
			     year = EXCLUDED.year`,
			e.Name, strings.ToLower(e.Email), e.USN, e.Department, e.Semester, e.Year,
		)
		if err != nil {
			return fmt.Errorf("upsert roster entry %s: %w", e.Email, err)
		}
	}
	return tx.Commit(ctx)
}
