package service

import (
	"context"
	"log/slog"

	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/money"
	"github.com/chipin-app/chipin-backend/internal/storage"
)

// FriendService manages friend connections between users.
type FriendService struct {
	store  storage.Store
	ledger *LedgerService
}

// NewFriendService creates a FriendService. The ledger service backs the
// per-friend balance summary.
func NewFriendService(store storage.Store, ledgerSvc *LedgerService) *FriendService {
	return &FriendService{store: store, ledger: ledgerSvc}
}

// SendRequest sends a friend request to the user registered under email.
func (s *FriendService) SendRequest(ctx context.Context, fromUserID, email string) (*models.FriendRequest, error) {
	to, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if to.ID == fromUserID {
		return nil, &ledger.ValidationError{Field: "email", Reason: "cannot befriend yourself"}
	}

	friends, err := s.store.ListFriendIDs(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	for _, id := range friends {
		if id == to.ID {
			return nil, &ledger.ConflictError{Reason: "already friends"}
		}
	}

	// A pending request in either direction blocks a new one.
	outgoing, err := s.store.ListFriendRequests(ctx, to.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range outgoing {
		if p.FromUserID == fromUserID {
			return nil, &ledger.ConflictError{Reason: "friend request already pending"}
		}
	}
	incoming, err := s.store.ListFriendRequests(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	for _, p := range incoming {
		if p.FromUserID == to.ID {
			return nil, &ledger.ConflictError{Reason: "friend request already pending"}
		}
	}

	req := &models.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   to.ID,
	}
	if err := s.store.CreateFriendRequest(ctx, req); err != nil {
		return nil, err
	}
	slog.Info("Friend request sent", "request_id", req.ID, "from", fromUserID, "to", to.ID)
	return req, nil
}

// AcceptRequest accepts a pending request addressed to the actor.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actorID string) error {
	return s.resolveRequest(ctx, requestID, actorID, models.FriendRequestAccepted)
}

// RejectRequest rejects a pending request addressed to the actor.
func (s *FriendService) RejectRequest(ctx context.Context, requestID, actorID string) error {
	return s.resolveRequest(ctx, requestID, actorID, models.FriendRequestRejected)
}

func (s *FriendService) resolveRequest(ctx context.Context, requestID, actorID, status string) error {
	req, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != actorID {
		return &ledger.NotFoundError{Resource: "friend request", ID: requestID}
	}
	if req.Status != models.FriendRequestPending {
		return &ledger.ConflictError{Reason: "friend request already resolved"}
	}
	if err := s.store.UpdateFriendRequestStatus(ctx, requestID, status); err != nil {
		return err
	}
	slog.Info("Friend request resolved", "request_id", requestID, "status", status)
	return nil
}

// PendingRequests lists pending requests addressed to the actor.
func (s *FriendService) PendingRequests(ctx context.Context, actorID string) ([]*models.FriendRequest, error) {
	return s.store.ListFriendRequests(ctx, actorID)
}

// FriendSummary is one friend plus the net balance across all shared
// groups. Positive balance means the friend owes the actor.
type FriendSummary struct {
	User    *models.User
	Balance money.Money
}

// ListFriends returns the actor's friends with their cross-group balances.
func (s *FriendService) ListFriends(ctx context.Context, actorID string) ([]FriendSummary, error) {
	friendIDs, err := s.store.ListFriendIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}

	summaries := make([]FriendSummary, 0, len(friendIDs))
	for _, id := range friendIDs {
		user, err := s.store.GetUserByID(ctx, id)
		if err != nil {
			return nil, err
		}
		balance, err := s.ledger.BalanceAcrossGroups(ctx, actorID, id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, FriendSummary{User: user, Balance: balance})
	}
	return summaries, nil
}

// FriendBalance computes the cross-group net against one friend.
func (s *FriendService) FriendBalance(ctx context.Context, actorID, friendID string) (money.Money, error) {
	return s.ledger.BalanceAcrossGroups(ctx, actorID, friendID)
}

// RemoveFriend deletes the friendship. Shared group ledgers are untouched;
// unsettled balances survive the friendship.
func (s *FriendService) RemoveFriend(ctx context.Context, actorID, friendID string) error {
	if err := s.store.RemoveFriend(ctx, actorID, friendID); err != nil {
		return err
	}
	slog.Info("Friend removed", "user_id", actorID, "friend_id", friendID)
	return nil
}
