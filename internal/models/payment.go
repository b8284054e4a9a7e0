package models

import "github.com/chipin-app/chipin-backend/internal/money"

// Payment represents a settlement between group members: money that moved
// from payer to payee on-chain, recorded to offset a computed balance.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	// GroupID is the group this payment belongs to.
	GroupID string

	// PayerID is the user who paid (debtor settling up).
	PayerID string

	// PayeeID is the user who received payment (creditor being paid).
	PayeeID string

	// Amount is the payment amount in minor units, always positive.
	Amount money.Money

	// TransferRef is the opaque transaction signature returned by the
	// wallet subsystem. Unique per group; a retried client request with the
	// same reference is rejected instead of double-credited.
	TransferRef string

	// Tombstoned marks the payment as retracted.
	Tombstoned bool

	// CreatedBy is the user ID who recorded this payment.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64

	// Note is an optional description for the payment.
	Note string
}
