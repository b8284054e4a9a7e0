package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/money"
	"github.com/chipin-app/chipin-backend/internal/storage/sqlite"
)

func newTestLedger(t *testing.T) (*LedgerService, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewLedgerService(store), store
}

func seedUser(t *testing.T, store *sqlite.SQLiteStore, email, name string) *models.User {
	t.Helper()

	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func seedGroup(t *testing.T, store *sqlite.SQLiteStore, name string, members ...string) *models.Group {
	t.Helper()

	group := &models.Group{Name: name, Members: members, CreatedBy: members[0]}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("failed to create group %s: %v", name, err)
	}
	return group
}

func TestAddExpenseAndBalances(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	carol := seedUser(t, store, "carol@example.com", "Carol")
	group := seedGroup(t, store, "Trip", alice.ID, bob.ID, carol.ID)

	_, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID:      group.ID,
		Title:        "Dinner",
		PayerID:      alice.ID,
		Amount:       100,
		Participants: []string{alice.ID, bob.ID, carol.ID},
		ActorID:      alice.ID,
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	net, err := svc.NetBalances(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}

	// 100 among three: shares of 34/33/33 by sorted member id. Alice nets
	// 100 minus her own share; the others owe theirs.
	sum := money.Zero
	for _, balance := range net {
		sum = sum.Add(balance)
	}
	if !sum.IsZero() {
		t.Errorf("balances sum to %d, want 0", sum)
	}
	if net[alice.ID] <= 0 {
		t.Errorf("payer balance = %d, want positive", net[alice.ID])
	}
	if net[bob.ID].Add(net[carol.ID]) != net[alice.ID].Neg() {
		t.Errorf("debts do not offset credit: %v", net)
	}
}

func TestAddExpense_Rejections(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	outsider := seedUser(t, store, "eve@example.com", "Eve")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	tests := []struct {
		name  string
		input AddExpenseInput
		check func(t *testing.T, err error)
	}{
		{
			name: "actor not a member",
			input: AddExpenseInput{
				GroupID: group.ID, PayerID: alice.ID, Amount: 100,
				Participants: []string{alice.ID}, ActorID: outsider.ID,
			},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotMember) {
					t.Errorf("expected ErrNotMember, got %v", err)
				}
			},
		},
		{
			name: "non-member participant",
			input: AddExpenseInput{
				GroupID: group.ID, PayerID: alice.ID, Amount: 100,
				Participants: []string{alice.ID, outsider.ID}, ActorID: alice.ID,
			},
			check: func(t *testing.T, err error) {
				var verr *ledger.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
			},
		},
		{
			name: "zero amount",
			input: AddExpenseInput{
				GroupID: group.ID, PayerID: alice.ID, Amount: 0,
				Participants: []string{alice.ID}, ActorID: alice.ID,
			},
			check: func(t *testing.T, err error) {
				var verr *ledger.ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
			},
		},
		{
			name: "unknown group",
			input: AddExpenseInput{
				GroupID: "nonexistent", PayerID: alice.ID, Amount: 100,
				Participants: []string{alice.ID}, ActorID: alice.ID,
			},
			check: func(t *testing.T, err error) {
				var nf *ledger.NotFoundError
				if !errors.As(err, &nf) {
					t.Errorf("expected NotFoundError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddExpense(ctx, tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestEditExpense_TombstonesOriginal(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	original, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Rent", PayerID: alice.ID, Amount: 1000,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	replacement, err := svc.EditExpense(ctx, original.ID, AddExpenseInput{
		GroupID: group.ID, Title: "Rent (corrected)", PayerID: alice.ID, Amount: 2000,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	})
	if err != nil {
		t.Fatalf("EditExpense failed: %v", err)
	}
	if replacement.Replaces != original.ID {
		t.Errorf("replacement.Replaces = %q, want %q", replacement.Replaces, original.ID)
	}

	got, err := store.GetExpense(ctx, original.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if !got.Tombstoned {
		t.Error("original should be tombstoned after edit")
	}

	// Only the replacement counts toward balances.
	net, err := svc.NetBalances(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}
	if net[alice.ID] != 1000 || net[bob.ID] != -1000 {
		t.Errorf("balances after edit = %v, want alice +1000, bob -1000", net)
	}

	// An already-retracted expense cannot be edited again.
	_, err = svc.EditExpense(ctx, original.ID, AddExpenseInput{
		GroupID: group.ID, Title: "Again", PayerID: alice.ID, Amount: 500,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	})
	var conflict *ledger.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("expected ConflictError editing tombstoned expense, got %v", err)
	}
}

func TestEditExpense_OwnerOnly(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	expense, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Taxi", PayerID: alice.ID, Amount: 300,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	_, err = svc.EditExpense(ctx, expense.ID, AddExpenseInput{
		GroupID: group.ID, Title: "Taxi", PayerID: alice.ID, Amount: 600,
		Participants: []string{alice.ID, bob.ID}, ActorID: bob.ID,
	})
	if !errors.Is(err, ErrNotExpenseOwner) {
		t.Errorf("expected ErrNotExpenseOwner, got %v", err)
	}

	if err := svc.RemoveExpense(ctx, group.ID, expense.ID, bob.ID); !errors.Is(err, ErrNotExpenseOwner) {
		t.Errorf("expected ErrNotExpenseOwner on remove, got %v", err)
	}
}

func TestRemoveExpense(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	expense, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Coffee", PayerID: alice.ID, Amount: 700,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if err := svc.RemoveExpense(ctx, group.ID, expense.ID, alice.ID); err != nil {
		t.Fatalf("RemoveExpense failed: %v", err)
	}

	net, err := svc.NetBalances(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}
	for member, balance := range net {
		if !balance.IsZero() {
			t.Errorf("net[%s] = %d after retraction, want 0", member, balance)
		}
	}
}

func TestRecordSettlement_Idempotent(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	if _, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Rent", PayerID: alice.ID, Amount: 1000,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	settle := RecordSettlementInput{
		GroupID: group.ID, PayerID: bob.ID, PayeeID: alice.ID,
		Amount: 500, TransferRef: "sig-settle-1", ActorID: bob.ID,
	}
	if _, err := svc.RecordSettlement(ctx, settle); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	net, err := svc.NetBalances(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}
	if net[alice.ID] != 0 || net[bob.ID] != 0 {
		t.Fatalf("balances after settlement = %v, want all zero", net)
	}

	// Retrying the same transfer reference must fail and leave balances
	// untouched.
	_, err = svc.RecordSettlement(ctx, settle)
	var conflict *ledger.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on duplicate transfer ref, got %v", err)
	}

	net, err = svc.NetBalances(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}
	if net[alice.ID] != 0 || net[bob.ID] != 0 {
		t.Errorf("balances changed by rejected duplicate: %v", net)
	}
}

func TestPairwiseBalanceService(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	carol := seedUser(t, store, "carol@example.com", "Carol")
	group := seedGroup(t, store, "Trip", alice.ID, bob.ID, carol.ID)

	if _, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Hotel", PayerID: alice.ID, Amount: 90,
		Participants: []string{alice.ID, bob.ID, carol.ID}, ActorID: alice.ID,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	got, err := svc.PairwiseBalance(ctx, group.ID, alice.ID, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("PairwiseBalance failed: %v", err)
	}
	if got != 30 {
		t.Errorf("PairwiseBalance(alice, bob) = %d, want 30", got)
	}

	flipped, err := svc.PairwiseBalance(ctx, group.ID, bob.ID, alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("PairwiseBalance failed: %v", err)
	}
	if flipped != -30 {
		t.Errorf("PairwiseBalance(bob, alice) = %d, want -30", flipped)
	}
}

func TestBalanceAcrossGroups(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	groupA := seedGroup(t, store, "Roommates", alice.ID, bob.ID)
	groupB := seedGroup(t, store, "Trip", alice.ID, bob.ID)

	if _, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: groupA.ID, Title: "Rent", PayerID: alice.ID, Amount: 1000,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if _, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: groupB.ID, Title: "Fuel", PayerID: bob.ID, Amount: 400,
		Participants: []string{alice.ID, bob.ID}, ActorID: bob.ID,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// Bob owes 500 in groupA, alice owes 200 in groupB: net 300 toward alice.
	total, err := svc.BalanceAcrossGroups(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("BalanceAcrossGroups failed: %v", err)
	}
	if total != 300 {
		t.Errorf("BalanceAcrossGroups = %d, want 300", total)
	}
}

func TestSuggestedSettlements(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	carol := seedUser(t, store, "carol@example.com", "Carol")
	group := seedGroup(t, store, "Trip", alice.ID, bob.ID, carol.ID)

	if _, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Hotel", PayerID: alice.ID, Amount: 9000,
		Participants: []string{alice.ID, bob.ID, carol.ID}, ActorID: alice.ID,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	plan, err := svc.SuggestedSettlements(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("SuggestedSettlements failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(plan))
	}
	for _, tr := range plan {
		if tr.To != alice.ID {
			t.Errorf("transfer %v should pay alice", tr)
		}
		if tr.Amount != 3000 {
			t.Errorf("transfer amount = %d, want 3000", tr.Amount)
		}
	}

	// Recording the plan as payments settles the group.
	for i, tr := range plan {
		if _, err := svc.RecordSettlement(ctx, RecordSettlementInput{
			GroupID: group.ID, PayerID: tr.From, PayeeID: tr.To,
			Amount: tr.Amount, TransferRef: "sig-plan-" + string(rune('a'+i)), ActorID: tr.From,
		}); err != nil {
			t.Fatalf("RecordSettlement failed: %v", err)
		}
	}
	net, err := svc.NetBalances(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("NetBalances failed: %v", err)
	}
	for member, balance := range net {
		if !balance.IsZero() {
			t.Errorf("net[%s] = %d after applying plan, want 0", member, balance)
		}
	}
}

func TestEntriesFeed(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	expense, err := svc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Lunch", PayerID: alice.ID, Amount: 800,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
	if _, err := svc.RecordSettlement(ctx, RecordSettlementInput{
		GroupID: group.ID, PayerID: bob.ID, PayeeID: alice.ID,
		Amount: 400, TransferRef: "sig-feed", ActorID: bob.ID,
	}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if err := svc.RemoveExpense(ctx, group.ID, expense.ID, alice.ID); err != nil {
		t.Fatalf("RemoveExpense failed: %v", err)
	}

	feed, err := svc.Entries(ctx, group.ID, alice.ID)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 feed entries, got %d", len(feed))
	}

	// The tombstoned expense stays in the feed.
	var foundTombstone bool
	for _, activity := range feed {
		if activity.Expense != nil && activity.Expense.Tombstoned {
			foundTombstone = true
		}
	}
	if !foundTombstone {
		t.Error("retracted expense missing from feed")
	}
}
