package ledger

import (
	"reflect"
	"testing"

	"github.com/chipin-app/chipin-backend/internal/money"
)

// applyPlan replays a settlement plan against a copy of the net balances.
func applyPlan(net map[string]money.Money, plan []Transfer) map[string]money.Money {
	out := make(map[string]money.Money, len(net))
	for member, balance := range net {
		out[member] = balance
	}
	for _, tr := range plan {
		out[tr.From] = out[tr.From].Add(tr.Amount)
		out[tr.To] = out[tr.To].Sub(tr.Amount)
	}
	return out
}

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name string
		net  map[string]money.Money
		want []Transfer
	}{
		{
			name: "all settled yields empty plan",
			net:  map[string]money.Money{"alice": 0, "bob": 0},
			want: nil,
		},
		{
			name: "single debtor single creditor",
			net:  map[string]money.Money{"alice": 500, "bob": -500},
			want: []Transfer{{From: "bob", To: "alice", Amount: 500}},
		},
		{
			name: "two debtors one creditor",
			net:  map[string]money.Money{"alice": 66, "bob": -33, "carol": -33},
			// Equal debts tie-break by member id ascending.
			want: []Transfer{
				{From: "bob", To: "alice", Amount: 33},
				{From: "carol", To: "alice", Amount: 33},
			},
		},
		{
			name: "largest debtor matched first",
			net:  map[string]money.Money{"alice": 100, "bob": -70, "carol": -30},
			want: []Transfer{
				{From: "bob", To: "alice", Amount: 70},
				{From: "carol", To: "alice", Amount: 30},
			},
		},
		{
			name: "creditor split across debtors",
			net:  map[string]money.Money{"alice": 40, "bob": 60, "carol": -100},
			want: []Transfer{
				{From: "carol", To: "bob", Amount: 60},
				{From: "carol", To: "alice", Amount: 40},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanSettlement(tt.net)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlanSettlement() = %v, want %v", got, tt.want)
			}

			after := applyPlan(tt.net, got)
			for member, balance := range after {
				if !balance.IsZero() {
					t.Errorf("after plan, net[%s] = %d, want 0", member, balance)
				}
			}
		})
	}
}

func TestPlanSettlement_Deterministic(t *testing.T) {
	net := map[string]money.Money{
		"alice": 1250,
		"bob":   -400,
		"carol": -850,
		"dave":  700,
		"erin":  -700,
	}

	first := PlanSettlement(net)
	for i := 0; i < 10; i++ {
		if got := PlanSettlement(net); !reflect.DeepEqual(got, first) {
			t.Fatalf("plan changed between runs: %v vs %v", got, first)
		}
	}
}

func TestPlanSettlement_TransferBound(t *testing.T) {
	net := map[string]money.Money{
		"a": 10, "b": 20, "c": 30, "d": -15, "e": -25, "f": -20,
	}

	plan := PlanSettlement(net)

	nonzero := 0
	for _, balance := range net {
		if !balance.IsZero() {
			nonzero++
		}
	}
	if len(plan) > nonzero-1 {
		t.Errorf("plan has %d transfers for %d unsettled members, want at most %d",
			len(plan), nonzero, nonzero-1)
	}

	for _, tr := range plan {
		if !tr.Amount.IsPositive() {
			t.Errorf("transfer %v has non-positive amount", tr)
		}
		if tr.From == tr.To {
			t.Errorf("transfer %v pays self", tr)
		}
	}
}
