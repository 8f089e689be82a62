// Package audit records platform activity to the system log.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Event represents one system log entry.
type Event struct {
	Action      string
	Description string
	Actor       string
	Data        map[string]any
	CreatedAt   time.Time
}

// Logger defines audit logging behavior. Implementations must be safe for
// concurrent use.
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// NopLogger ignores all events.
type NopLogger struct{}

func (NopLogger) Log(context.Context, Event) error {
	return nil
}

// MemoryLogger stores events in memory for tests.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		events: []Event{},
	}
}

func (l *MemoryLogger) Log(_ context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("action is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresLogger inserts events into the system_logs table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresLogger(pool *pgxpool.Pool) *PostgresLogger {
	return &PostgresLogger{pool: pool}
}

func (l *PostgresLogger) Log(ctx context.Context, event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("audit logger pool is nil")
	}
	if event.Action == "" {
		return fmt.Errorf("action is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO system_logs (action, description, actor, data, created_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)`,
		event.Action,
		event.Description,
		event.Actor,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert system log: %w", err)
	}

	slog.Debug("audit event logged",
		"action", event.Action,
		"actor", event.Actor,
	)
	return nil
}
