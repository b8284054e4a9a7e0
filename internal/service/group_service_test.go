package service

import (
	"context"
	"errors"
	"testing"

	"github.com/chipin-app/chipin-backend/internal/ledger"
)

func TestCreateGroup_CreatorAlwaysMember(t *testing.T) {
	ledgerSvc, store := newTestLedger(t)
	svc := NewGroupService(store, ledgerSvc)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")

	// Creator omitted from the member list still ends up a member.
	group, err := svc.CreateGroup(ctx, "Trip", alice.ID, []string{bob.ID})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if !group.HasMember(alice.ID) {
		t.Error("creator should be a member")
	}
	if !group.HasMember(bob.ID) {
		t.Error("bob should be a member")
	}
	if len(group.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(group.Members))
	}
}

func TestCreateGroup_Rejections(t *testing.T) {
	ledgerSvc, store := newTestLedger(t)
	svc := NewGroupService(store, ledgerSvc)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")

	if _, err := svc.CreateGroup(ctx, "", alice.ID, nil); err == nil {
		t.Error("expected error for empty name")
	}

	_, err := svc.CreateGroup(ctx, "Ghosts", alice.ID, []string{"nonexistent"})
	var notFound *ledger.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for unknown member, got %v", err)
	}
}

func TestGetGroup_MemberOnly(t *testing.T) {
	ledgerSvc, store := newTestLedger(t)
	svc := NewGroupService(store, ledgerSvc)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	eve := seedUser(t, store, "eve@example.com", "Eve")
	group := seedGroup(t, store, "Private", alice.ID)

	if _, err := svc.GetGroup(ctx, group.ID, alice.ID); err != nil {
		t.Fatalf("GetGroup as member failed: %v", err)
	}
	if _, err := svc.GetGroup(ctx, group.ID, eve.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("expected ErrNotMember for outsider, got %v", err)
	}
}

func TestRenameGroup(t *testing.T) {
	ledgerSvc, store := newTestLedger(t)
	svc := NewGroupService(store, ledgerSvc)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	group := seedGroup(t, store, "Old Name", alice.ID)

	renamed, err := svc.RenameGroup(ctx, group.ID, "New Name", alice.ID)
	if err != nil {
		t.Fatalf("RenameGroup failed: %v", err)
	}
	if renamed.Name != "New Name" {
		t.Errorf("name = %q, want 'New Name'", renamed.Name)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("persisted name = %q", got.Name)
	}
}

func TestRemoveMember_BalanceGuard(t *testing.T) {
	ledgerSvc, store := newTestLedger(t)
	svc := NewGroupService(store, ledgerSvc)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Pair", alice.ID, bob.ID)

	if _, err := ledgerSvc.AddExpense(ctx, AddExpenseInput{
		GroupID: group.ID, Title: "Rent", PayerID: alice.ID, Amount: 1000,
		Participants: []string{alice.ID, bob.ID}, ActorID: alice.ID,
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// Bob owes 500 and cannot leave.
	if err := svc.RemoveMember(ctx, group.ID, bob.ID, alice.ID); !errors.Is(err, ErrMemberHasBalance) {
		t.Errorf("expected ErrMemberHasBalance, got %v", err)
	}

	if _, err := ledgerSvc.RecordSettlement(ctx, RecordSettlementInput{
		GroupID: group.ID, PayerID: bob.ID, PayeeID: alice.ID,
		Amount: 500, TransferRef: "sig-leave", ActorID: bob.ID,
	}); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	// Settled up, removal succeeds.
	if err := svc.RemoveMember(ctx, group.ID, bob.ID, alice.ID); err != nil {
		t.Fatalf("RemoveMember after settling failed: %v", err)
	}

	got, err := store.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.HasMember(bob.ID) {
		t.Error("bob still a member after removal")
	}
}

func TestAddMembers(t *testing.T) {
	ledgerSvc, store := newTestLedger(t)
	svc := NewGroupService(store, ledgerSvc)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, "Solo", alice.ID)

	updated, err := svc.AddMembers(ctx, group.ID, []string{bob.ID}, alice.ID)
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if !updated.HasMember(bob.ID) {
		t.Error("bob not added")
	}

	_, err = svc.AddMembers(ctx, group.ID, []string{"nonexistent"}, alice.ID)
	var notFound *ledger.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected NotFoundError for unknown user, got %v", err)
	}
}
