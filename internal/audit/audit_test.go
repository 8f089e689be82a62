package audit_test

import (
	"context"
	"testing"

	"github.com/certledger/certledger/internal/audit"
)

func TestMemoryLogger_Log(t *testing.T) {
	logger := audit.NewMemoryLogger()

	err := logger.Log(context.Background(), audit.Event{
		Action:      "quiz_submitted",
		Description: "quiz submitted for React",
		Actor:       "priya@example.edu",
		Data: map[string]any{
			"score": 12,
		},
	})
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	events := logger.Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Action != "quiz_submitted" {
		t.Errorf("Action = %q, want quiz_submitted", events[0].Action)
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryLogger_Log_RequiresAction(t *testing.T) {
	logger := audit.NewMemoryLogger()
	if err := logger.Log(context.Background(), audit.Event{Actor: "x"}); err == nil {
		t.Error("Log() should require an action")
	}
}

func TestPostgresLogger_Log_NilPool(t *testing.T) {
	logger := audit.NewPostgresLogger(nil)

	err := logger.Log(context.Background(), audit.Event{
		Action: "credential_issued",
	})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}
