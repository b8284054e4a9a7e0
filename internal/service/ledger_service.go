package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/metrics"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/money"
	"github.com/chipin-app/chipin-backend/internal/storage"
)

// ErrNotMember rejects an actor who is not part of the group they are
// trying to touch.
var ErrNotMember = errors.New("you must be a member of this group")

// ErrNotExpenseOwner rejects an edit or delete by someone other than the
// expense's payer or recorder.
var ErrNotExpenseOwner = errors.New("only the payer or recorder can change this expense")

// LedgerService orchestrates the group ledger: it validates entries, appends
// them, and derives balances and settlement plans on demand. Balances are
// never stored; every read folds the full entry history.
type LedgerService struct {
	store storage.Store

	// groupLocks serializes appends per group so two concurrent settlement
	// recordings cannot both read a stale balance and both be accepted.
	// Reads need no locking; the balance fold is pure.
	groupLocks sync.Map // groupID -> *sync.Mutex
}

// NewLedgerService creates a LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) lockGroup(groupID string) func() {
	mu, _ := s.groupLocks.LoadOrStore(groupID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// AddExpenseInput carries a new expense to record.
type AddExpenseInput struct {
	GroupID      string
	Title        string
	PayerID      string
	Amount       money.Money
	Participants []string
	ActorID      string
}

// AddExpense validates and appends a new expense to the group's ledger.
func (s *LedgerService) AddExpense(ctx context.Context, in AddExpenseInput) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.ActorID) {
		return nil, ErrNotMember
	}

	if err := ledger.ValidateExpense(group.MemberSet(), ledger.Expense{
		Payer:        in.PayerID,
		Amount:       in.Amount,
		Participants: in.Participants,
	}); err != nil {
		metrics.ValidationRejections.Inc()
		return nil, err
	}

	expense := &models.Expense{
		GroupID:      in.GroupID,
		Title:        in.Title,
		PayerID:      in.PayerID,
		Amount:       in.Amount,
		Participants: in.Participants,
		CreatedBy:    in.ActorID,
	}

	unlock := s.lockGroup(in.GroupID)
	defer unlock()

	if err := s.store.AppendExpense(ctx, expense); err != nil {
		return nil, err
	}
	metrics.EntriesAppended.WithLabelValues("expense").Inc()

	slog.Info("Expense recorded",
		"group_id", in.GroupID,
		"expense_id", expense.ID,
		"payer_id", in.PayerID,
		"amount", in.Amount.String(),
		"participants", len(in.Participants),
	)
	return expense, nil
}

// EditExpense retracts an existing expense and records a corrected one in
// its place. The original stays in history as a tombstone; the new entry
// carries a reference to it.
func (s *LedgerService) EditExpense(ctx context.Context, expenseID string, in AddExpenseInput) (*models.Expense, error) {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if existing.GroupID != in.GroupID {
		return nil, &ledger.NotFoundError{Resource: "expense", ID: expenseID}
	}
	if existing.Tombstoned {
		return nil, &ledger.ConflictError{Reason: "expense already retracted: " + expenseID}
	}
	if in.ActorID != existing.PayerID && in.ActorID != existing.CreatedBy {
		return nil, ErrNotExpenseOwner
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateExpense(group.MemberSet(), ledger.Expense{
		Payer:        in.PayerID,
		Amount:       in.Amount,
		Participants: in.Participants,
	}); err != nil {
		metrics.ValidationRejections.Inc()
		return nil, err
	}

	replacement := &models.Expense{
		GroupID:      in.GroupID,
		Title:        in.Title,
		PayerID:      in.PayerID,
		Amount:       in.Amount,
		Participants: in.Participants,
		Replaces:     expenseID,
		CreatedBy:    in.ActorID,
	}

	unlock := s.lockGroup(in.GroupID)
	defer unlock()

	if err := s.store.TombstoneExpense(ctx, expenseID); err != nil {
		return nil, err
	}
	if err := s.store.AppendExpense(ctx, replacement); err != nil {
		return nil, err
	}
	metrics.EntriesAppended.WithLabelValues("expense").Inc()

	slog.Info("Expense replaced",
		"group_id", in.GroupID,
		"retracted_id", expenseID,
		"expense_id", replacement.ID,
	)
	return replacement, nil
}

// RemoveExpense retracts an expense. History is preserved; the entry is
// tombstoned, never deleted.
func (s *LedgerService) RemoveExpense(ctx context.Context, groupID, expenseID, actorID string) error {
	existing, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if existing.GroupID != groupID {
		return &ledger.NotFoundError{Resource: "expense", ID: expenseID}
	}
	if actorID != existing.PayerID && actorID != existing.CreatedBy {
		return ErrNotExpenseOwner
	}

	unlock := s.lockGroup(groupID)
	defer unlock()

	if err := s.store.TombstoneExpense(ctx, expenseID); err != nil {
		return err
	}
	slog.Info("Expense retracted", "group_id", groupID, "expense_id", expenseID)
	return nil
}

// RecordSettlementInput carries a confirmed settlement to record.
type RecordSettlementInput struct {
	GroupID     string
	PayerID     string
	PayeeID     string
	Amount      money.Money
	TransferRef string
	Note        string
	ActorID     string
}

// RecordSettlement validates and appends a confirmed settlement payment.
// Recording the same transfer reference twice for a group fails with a
// ConflictError and leaves balances untouched, so a retried client request
// cannot double-credit a settlement.
func (s *LedgerService) RecordSettlement(ctx context.Context, in RecordSettlementInput) (*models.Payment, error) {
	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.ActorID) {
		return nil, ErrNotMember
	}

	if err := ledger.ValidatePayment(group.MemberSet(), ledger.Payment{
		Payer:       in.PayerID,
		Payee:       in.PayeeID,
		Amount:      in.Amount,
		TransferRef: in.TransferRef,
	}); err != nil {
		metrics.ValidationRejections.Inc()
		return nil, err
	}

	payment := &models.Payment{
		GroupID:     in.GroupID,
		PayerID:     in.PayerID,
		PayeeID:     in.PayeeID,
		Amount:      in.Amount,
		TransferRef: in.TransferRef,
		Note:        in.Note,
		CreatedBy:   in.ActorID,
	}

	unlock := s.lockGroup(in.GroupID)
	defer unlock()

	if err := s.store.AppendPayment(ctx, payment); err != nil {
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			metrics.SettlementConflicts.Inc()
			slog.Warn("Duplicate settlement rejected",
				"group_id", in.GroupID,
				"transfer_ref", in.TransferRef,
			)
		}
		return nil, err
	}
	metrics.EntriesAppended.WithLabelValues("payment").Inc()

	slog.Info("Settlement recorded",
		"group_id", in.GroupID,
		"payment_id", payment.ID,
		"payer_id", in.PayerID,
		"payee_id", in.PayeeID,
		"amount", in.Amount.String(),
		"transfer_ref", in.TransferRef,
	)
	return payment, nil
}

// NetBalances recomputes the group's per-member net balances from its full
// entry history.
func (s *LedgerService) NetBalances(ctx context.Context, groupID, actorID string) (map[string]money.Money, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}

	entries, err := s.entriesForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	metrics.BalanceComputations.Inc()
	return ledger.ComputeBalances(group.Members, entries), nil
}

// PairwiseBalance computes the net between two members of a group by
// replaying only the entries the pair shares. Positive means otherID owes
// memberID.
func (s *LedgerService) PairwiseBalance(ctx context.Context, groupID, memberID, otherID, actorID string) (money.Money, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return money.Zero, err
	}
	if !group.HasMember(actorID) {
		return money.Zero, ErrNotMember
	}
	if !group.HasMember(memberID) {
		return money.Zero, &ledger.NotFoundError{Resource: "member", ID: memberID}
	}
	if !group.HasMember(otherID) {
		return money.Zero, &ledger.NotFoundError{Resource: "member", ID: otherID}
	}

	entries, err := s.entriesForGroup(ctx, groupID)
	if err != nil {
		return money.Zero, err
	}
	return ledger.PairwiseBalance(memberID, otherID, entries), nil
}

// BalanceAcrossGroups sums the pairwise net between two users over every
// group they share. This backs the per-friend "owes you / you owe" display.
func (s *LedgerService) BalanceAcrossGroups(ctx context.Context, userID, friendID string) (money.Money, error) {
	groups, err := s.store.ListSharedGroups(ctx, userID, friendID)
	if err != nil {
		return money.Zero, err
	}

	total := money.Zero
	for _, group := range groups {
		entries, err := s.entriesForGroup(ctx, group.ID)
		if err != nil {
			return money.Zero, err
		}
		total = total.Add(ledger.PairwiseBalance(userID, friendID, entries))
	}
	return total, nil
}

// SuggestedSettlements plans a deterministic, near-minimal set of transfers
// that would zero out the group's current balances.
func (s *LedgerService) SuggestedSettlements(ctx context.Context, groupID, actorID string) ([]ledger.Transfer, error) {
	net, err := s.NetBalances(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	return ledger.PlanSettlement(net), nil
}

// Activity is one entry of a group's feed, newest first. Exactly one of
// Expense or Payment is set.
type Activity struct {
	Expense *models.Expense
	Payment *models.Payment
}

func (a Activity) createdAt() int64 {
	if a.Expense != nil {
		return a.Expense.CreatedAt
	}
	return a.Payment.CreatedAt
}

// Entries returns the group's full history, tombstones included, newest
// first.
func (s *LedgerService) Entries(ctx context.Context, groupID, actorID string) ([]Activity, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	feed := make([]Activity, 0, len(expenses)+len(payments))
	for _, e := range expenses {
		feed = append(feed, Activity{Expense: e})
	}
	for _, p := range payments {
		feed = append(feed, Activity{Payment: p})
	}
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].createdAt() > feed[j].createdAt()
	})
	return feed, nil
}

// entriesForGroup loads a group's history in ledger form.
func (s *LedgerService) entriesForGroup(ctx context.Context, groupID string) ([]ledger.Entry, error) {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	entries := make([]ledger.Entry, 0, len(expenses)+len(payments))
	for _, e := range expenses {
		entries = append(entries, ledger.ExpenseEntry(ledger.Expense{
			ID:           e.ID,
			Payer:        e.PayerID,
			Amount:       e.Amount,
			Participants: e.Participants,
			Tombstoned:   e.Tombstoned,
		}))
	}
	for _, p := range payments {
		entries = append(entries, ledger.PaymentEntry(ledger.Payment{
			ID:          p.ID,
			Payer:       p.PayerID,
			Payee:       p.PayeeID,
			Amount:      p.Amount,
			TransferRef: p.TransferRef,
			Tombstoned:  p.Tombstoned,
		}))
	}
	return entries, nil
}
