package ledger

import (
	"sort"

	"github.com/chipin-app/chipin-backend/internal/money"
)

// Transfer is one suggested settling payment.
type Transfer struct {
	From   string
	To     string
	Amount money.Money
}

// PlanSettlement reduces a set of net balances to a sequence of transfers
// that zeroes every member out. It greedily matches the largest outstanding
// debtor with the largest outstanding creditor, transferring the smaller of
// the two magnitudes, until nothing is owed. Ties are broken by member id
// ascending so the plan is reproducible.
//
// The greedy heuristic emits at most n-1 transfers for n members with
// nonzero balance. It is not guaranteed globally minimal for every input,
// but it is bounded and deterministic, which is what the product needs.
// Applying the plan as payments and recomputing balances yields all zeros.
func PlanSettlement(net map[string]money.Money) []Transfer {
	type stake struct {
		member string
		amount money.Money // always positive
	}

	var debtors, creditors []stake
	for member, balance := range net {
		switch {
		case balance < 0:
			debtors = append(debtors, stake{member, balance.Neg()})
		case balance > 0:
			creditors = append(creditors, stake{member, balance})
		}
	}

	byOutstanding := func(s []stake) {
		sort.Slice(s, func(i, j int) bool {
			if s[i].amount != s[j].amount {
				return s[i].amount > s[j].amount
			}
			return s[i].member < s[j].member
		})
	}

	var plan []Transfer
	for len(debtors) > 0 && len(creditors) > 0 {
		byOutstanding(debtors)
		byOutstanding(creditors)

		debtor, creditor := &debtors[0], &creditors[0]
		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		plan = append(plan, Transfer{From: debtor.member, To: creditor.member, Amount: amount})

		debtor.amount = debtor.amount.Sub(amount)
		creditor.amount = creditor.amount.Sub(amount)
		if debtor.amount.IsZero() {
			debtors = debtors[1:]
		}
		if creditor.amount.IsZero() {
			creditors = creditors[1:]
		}
	}

	return plan
}
