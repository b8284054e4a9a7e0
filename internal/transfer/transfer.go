// Package transfer models the wallet/on-chain collaborator that actually
// moves money. The ledger core never sees any of this: it only ever records
// Confirmed transfers, by their opaque reference string. Pending and Failed
// tracking lives here, outside the ledger.
package transfer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chipin-app/chipin-backend/internal/money"
)

// Status of a settlement attempt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

var (
	ErrAttemptNotFound = errors.New("transfer attempt not found")
	ErrAlreadyResolved = errors.New("transfer attempt already resolved")
)

// Request describes a token transfer between two wallet addresses.
type Request struct {
	FromAddress string
	ToAddress   string
	Amount      money.Money
}

// Submitter executes a token transfer and returns an opaque transfer
// reference (e.g. a transaction signature) on success. Implementations talk
// to the wallet subsystem; retries are their business and must end in a
// single reference.
type Submitter interface {
	Submit(ctx context.Context, req Request) (ref string, err error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, req Request) (string, error)

func (f SubmitterFunc) Submit(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Attempt is one tracked settlement attempt.
// Pending -> Confirmed (ref observed) or Pending -> Failed; both terminal.
type Attempt struct {
	ID        string
	Request   Request
	Status    Status
	Ref       string
	Reason    string
	CreatedAt time.Time
}

// Manager tracks settlement attempts through their lifecycle. It guarantees
// an attempt resolves at most once, so a retried confirmation cannot hand
// the ledger a second reference.
type Manager struct {
	mu       sync.Mutex
	attempts map[string]*Attempt
}

// NewManager creates an empty attempt tracker.
func NewManager() *Manager {
	return &Manager{attempts: make(map[string]*Attempt)}
}

// Begin registers a new pending attempt.
func (m *Manager) Begin(req Request) *Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt := &Attempt{
		ID:        uuid.New().String(),
		Request:   req,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
	m.attempts[attempt.ID] = attempt
	return attempt
}

// Get returns a copy of the attempt.
func (m *Manager) Get(id string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return *attempt, nil
}

// Confirm resolves a pending attempt with the observed transfer reference.
func (m *Manager) Confirm(id, ref string) (Attempt, error) {
	return m.resolve(id, StatusConfirmed, ref, "")
}

// Fail resolves a pending attempt as failed. No ledger mutation follows.
func (m *Manager) Fail(id, reason string) (Attempt, error) {
	return m.resolve(id, StatusFailed, "", reason)
}

func (m *Manager) resolve(id string, status Status, ref, reason string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if attempt.Status != StatusPending {
		return *attempt, ErrAlreadyResolved
	}
	attempt.Status = status
	attempt.Ref = ref
	attempt.Reason = reason
	return *attempt, nil
}

// Execute submits the attempt's transfer through the given submitter and
// resolves it from the outcome.
func (m *Manager) Execute(ctx context.Context, id string, submitter Submitter) (Attempt, error) {
	attempt, err := m.Get(id)
	if err != nil {
		return Attempt{}, err
	}
	if attempt.Status != StatusPending {
		return attempt, ErrAlreadyResolved
	}

	ref, err := submitter.Submit(ctx, attempt.Request)
	if err != nil {
		return m.Fail(id, err.Error())
	}
	return m.Confirm(id, ref)
}
