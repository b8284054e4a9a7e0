// Package ledger implements the group ledger core: the entry model, the
// balance computation engine, the settlement planner, and entry validation.
//
// The ledger is the single source of truth for a group. Balances are always
// derived by folding the full entry history; they are never stored. Entries
// are immutable once recorded: an edit is a tombstone plus a new entry, and
// a delete is a tombstone, so history stays auditable.
package ledger

import (
	"sort"

	"github.com/chipin-app/chipin-backend/internal/money"
)

// Expense is a cost fronted by one member and shared among Participants.
// Participants may or may not include the payer; the balance formulation
// handles both uniformly.
type Expense struct {
	ID           string
	Payer        string
	Amount       money.Money
	Participants []string
	Tombstoned   bool
}

// Payment is money that actually moved from Payer to Payee outside the
// ledger (an on-chain transfer), recorded to offset a computed balance.
// TransferRef is the opaque transaction signature reported by the wallet.
type Payment struct {
	ID          string
	Payer       string
	Payee       string
	Amount      money.Money
	TransferRef string
	Tombstoned  bool
}

// Entry is one element of a group's ordered history. Exactly one of
// Expense or Payment is set.
type Entry struct {
	Expense *Expense
	Payment *Payment
}

// ExpenseEntry wraps an expense as a ledger entry.
func ExpenseEntry(e Expense) Entry {
	return Entry{Expense: &e}
}

// PaymentEntry wraps a payment as a ledger entry.
func PaymentEntry(p Payment) Entry {
	return Entry{Payment: &p}
}

func (e Entry) tombstoned() bool {
	switch {
	case e.Expense != nil:
		return e.Expense.Tombstoned
	case e.Payment != nil:
		return e.Payment.Tombstoned
	}
	return true
}

// shares returns each participant's share of the expense, keyed by member
// id. The remainder of the integer division goes to the first
// (amount mod k) participants in ascending id order, so the shares always
// sum exactly to the expense amount.
func (e *Expense) shares() map[string]money.Money {
	participants := make([]string, len(e.Participants))
	copy(participants, e.Participants)
	sort.Strings(participants)

	split := money.SplitEven(e.Amount, len(participants))
	shares := make(map[string]money.Money, len(participants))
	for i, p := range participants {
		shares[p] = split[i]
	}
	return shares
}
