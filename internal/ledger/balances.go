package ledger

import (
	"github.com/chipin-app/chipin-backend/internal/money"
)

// ComputeBalances folds a group's entry history into a net balance per
// member. Positive means the member is owed money by the rest of the group,
// negative means they owe. Tombstoned entries are skipped.
//
// For an expense the payer is credited the full amount and every participant
// (payer included, when they are in the split) is debited their share, so a
// payer who shares the cost nets amount minus their own share. For a payment
// the payer is debited and the payee credited. The per-member nets always
// sum to exactly zero because SplitEven loses no minor units.
//
// The fold is pure and side-effect free; callers may run it concurrently
// over the same entry slice.
func ComputeBalances(members []string, entries []Entry) map[string]money.Money {
	net := make(map[string]money.Money, len(members))
	for _, m := range members {
		net[m] = money.Zero
	}

	for _, entry := range entries {
		if entry.tombstoned() {
			continue
		}
		switch {
		case entry.Expense != nil:
			e := entry.Expense
			net[e.Payer] = net[e.Payer].Add(e.Amount)
			for p, share := range e.shares() {
				net[p] = net[p].Sub(share)
			}
		case entry.Payment != nil:
			p := entry.Payment
			net[p.Payer] = net[p.Payer].Sub(p.Amount)
			net[p.Payee] = net[p.Payee].Add(p.Amount)
		}
	}

	return net
}

// PairwiseBalance computes the net between two members by replaying only the
// entries where a and b sit on opposite sides of the same expense or payment.
// Positive means b owes a, negative means a owes b.
//
// This is deliberately not derived by intersecting the two members' aggregate
// nets: with three or more members in a shared expense the aggregate nets
// carry debt owed to or by third parties, and intersecting them double-counts.
func PairwiseBalance(a, b string, entries []Entry) money.Money {
	net := money.Zero
	for _, entry := range entries {
		if entry.tombstoned() {
			continue
		}
		switch {
		case entry.Expense != nil:
			e := entry.Expense
			switch e.Payer {
			case a:
				if share, ok := e.shares()[b]; ok {
					net = net.Add(share)
				}
			case b:
				if share, ok := e.shares()[a]; ok {
					net = net.Sub(share)
				}
			}
		case entry.Payment != nil:
			p := entry.Payment
			switch {
			case p.Payer == a && p.Payee == b:
				net = net.Add(p.Amount)
			case p.Payer == b && p.Payee == a:
				net = net.Sub(p.Amount)
			}
		}
	}
	return net
}
