package models

import "github.com/chipin-app/chipin-backend/internal/money"

// Expense represents a shared cost recorded against a group's ledger.
// Expenses are immutable: an edit tombstones the old row and records a new
// one carrying Replaces, a delete just tombstones.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Title is the human-readable description (e.g., "Dinner", "Fuel").
	Title string

	// PayerID is the user who fronted the cost.
	PayerID string

	// Amount is the full cost in minor units, always positive.
	Amount money.Money

	// Participants is the list of user IDs sharing the cost. It may or may
	// not include the payer.
	Participants []string

	// Tombstoned marks the expense as retracted. Tombstoned expenses stay
	// in history but are skipped by balance computation.
	Tombstoned bool

	// Replaces is the ID of the expense this one superseded, empty for an
	// original entry.
	Replaces string

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}
