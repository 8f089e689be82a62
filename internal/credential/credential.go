// Package credential holds issued-credential records, their stores, and
// the best-effort on-chain issuer boundary.
package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Pending is the placeholder stored for token and transaction identifiers
// when on-chain issuance is unavailable or fails. The credential record is
// still created; a background process may later replace the placeholders.
const Pending = "PENDING"

// ErrNotFound is returned when no credential matches a lookup.
var ErrNotFound = errors.New("credential not found")

// ErrIssuerDisabled is returned by DisabledIssuer.
var ErrIssuerDisabled = errors.New("credential issuer not configured")

// Credential is an issued, verifiable record of achievement.
type Credential struct {
	CertificateID   string    `json:"certificateId"`
	TokenID         string    `json:"tokenId"`
	CertificateHash string    `json:"certificateHash"`
	TransactionHash string    `json:"transactionHash,omitempty"`
	StudentName     string    `json:"studentName"`
	StudentEmail    string    `json:"studentEmail"`
	EventName       string    `json:"eventName"`
	EventDate       time.Time `json:"eventDate"`
	VerificationURL string    `json:"verificationUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Store persists credential records. (eventName, studentEmail) is unique:
// a learner holds at most one credential per event.
type Store interface {
	// FindByLearner returns all credentials held by a learner,
	// oldest first.
	FindByLearner(ctx context.Context, studentEmail string) ([]Credential, error)

	// FindOne returns the credential for an event/learner pair, or
	// ErrNotFound.
	FindOne(ctx context.Context, eventName, studentEmail string) (*Credential, error)

	// Create persists a new credential and returns it with CreatedAt set.
	Create(ctx context.Context, c Credential) (*Credential, error)
}

// IssueReceipt is the proof returned by an Issuer.
type IssueReceipt struct {
	TokenID         string
	TransactionHash string
}

// Issuer mints a verifiable token for a credential. Issuance is best
// effort from the caller's point of view: a failed Issue call must not
// block the learner-visible result, it only degrades the record to
// Pending placeholders.
type Issuer interface {
	Issue(ctx context.Context, studentEmail, certificateHash string) (IssueReceipt, error)
}

// DisabledIssuer always fails with ErrIssuerDisabled. It is the default
// when no on-chain backend is configured.
type DisabledIssuer struct{}

func (DisabledIssuer) Issue(context.Context, string, string) (IssueReceipt, error) {
	return IssueReceipt{}, ErrIssuerDisabled
}

// CertificateName derives the credential name for a quiz topic. Quiz
// credentials and their shadow events share this name, which is what the
// idempotency lookup keys on.
func CertificateName(topic string) string {
	return "Certified: " + topic
}

// NewCertificateID returns a public-facing credential identifier.
func NewCertificateID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return fmt.Sprintf("SKILL-%X", b)
}

// HashFor computes the content hash recorded on-chain for a credential.
func HashFor(studentEmail, eventName string, issuedAt time.Time) string {
	sum := sha256.Sum256([]byte(studentEmail + issuedAt.UTC().Format(time.RFC3339Nano) + eventName))
	return hex.EncodeToString(sum[:])
}
