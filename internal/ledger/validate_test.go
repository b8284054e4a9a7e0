package ledger

import (
	"errors"
	"testing"
)

func TestValidateExpense(t *testing.T) {
	members := map[string]bool{"alice": true, "bob": true, "carol": true}

	tests := []struct {
		name      string
		expense   Expense
		wantField string
	}{
		{
			name:    "valid expense",
			expense: Expense{Payer: "alice", Amount: 100, Participants: []string{"alice", "bob"}},
		},
		{
			name:    "payer outside the split is allowed",
			expense: Expense{Payer: "alice", Amount: 100, Participants: []string{"bob", "carol"}},
		},
		{
			name:      "zero amount",
			expense:   Expense{Payer: "alice", Amount: 0, Participants: []string{"alice"}},
			wantField: "amount",
		},
		{
			name:      "negative amount",
			expense:   Expense{Payer: "alice", Amount: -50, Participants: []string{"alice"}},
			wantField: "amount",
		},
		{
			name:      "missing payer",
			expense:   Expense{Amount: 100, Participants: []string{"alice"}},
			wantField: "payer",
		},
		{
			name:      "payer not a member",
			expense:   Expense{Payer: "mallory", Amount: 100, Participants: []string{"alice"}},
			wantField: "payer",
		},
		{
			name:      "empty participants",
			expense:   Expense{Payer: "alice", Amount: 100},
			wantField: "participants",
		},
		{
			name:      "non-member participant",
			expense:   Expense{Payer: "alice", Amount: 100, Participants: []string{"alice", "mallory"}},
			wantField: "participants",
		},
		{
			name:      "duplicate participant",
			expense:   Expense{Payer: "alice", Amount: 100, Participants: []string{"bob", "bob"}},
			wantField: "participants",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpense(members, tt.expense)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateExpense() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateExpense() = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("error field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidatePayment(t *testing.T) {
	members := map[string]bool{"alice": true, "bob": true}

	tests := []struct {
		name      string
		payment   Payment
		wantField string
	}{
		{
			name:    "valid payment",
			payment: Payment{Payer: "bob", Payee: "alice", Amount: 500, TransferRef: "sig-1"},
		},
		{
			name:      "zero amount",
			payment:   Payment{Payer: "bob", Payee: "alice", Amount: 0, TransferRef: "sig-1"},
			wantField: "amount",
		},
		{
			name:      "payer not a member",
			payment:   Payment{Payer: "mallory", Payee: "alice", Amount: 500, TransferRef: "sig-1"},
			wantField: "payer",
		},
		{
			name:      "payee not a member",
			payment:   Payment{Payer: "bob", Payee: "mallory", Amount: 500, TransferRef: "sig-1"},
			wantField: "payee",
		},
		{
			name:      "self payment",
			payment:   Payment{Payer: "bob", Payee: "bob", Amount: 500, TransferRef: "sig-1"},
			wantField: "payee",
		},
		{
			name:      "missing transfer ref",
			payment:   Payment{Payer: "bob", Payee: "alice", Amount: 500},
			wantField: "transfer_ref",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayment(members, tt.payment)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidatePayment() = %v, want nil", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidatePayment() = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("error field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}
