package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/storage"
)

// ErrMemberHasBalance rejects removing a group member who still owes or is
// owed money. The member must settle up first.
var ErrMemberHasBalance = errors.New("member has a nonzero balance; settle up before removing them")

// GroupService manages groups and their membership.
type GroupService struct {
	store  storage.Store
	ledger *LedgerService
}

// NewGroupService creates a GroupService. The ledger service backs the
// nonzero-balance guard on member removal.
func NewGroupService(store storage.Store, ledgerSvc *LedgerService) *GroupService {
	return &GroupService{store: store, ledger: ledgerSvc}
}

// CreateGroup creates a new group. The creator is always a member.
func (s *GroupService) CreateGroup(ctx context.Context, name, creatorID string, memberIDs []string) (*models.Group, error) {
	if name == "" {
		return nil, &ledger.ValidationError{Field: "name", Reason: "required"}
	}

	members := []string{creatorID}
	for _, id := range memberIDs {
		if id != creatorID {
			members = append(members, id)
		}
	}
	for _, id := range members {
		if _, err := s.store.GetUserByID(ctx, id); err != nil {
			return nil, err
		}
	}

	group := &models.Group{
		Name:      name,
		Members:   members,
		CreatedBy: creatorID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "name", name, "members", len(members))
	return group, nil
}

// GetGroup retrieves a group the actor belongs to.
func (s *GroupService) GetGroup(ctx context.Context, groupID, actorID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotMember
	}
	return group, nil
}

// ListGroups returns every group the actor belongs to.
func (s *GroupService) ListGroups(ctx context.Context, actorID string) ([]*models.Group, error) {
	return s.store.ListGroupsByMember(ctx, actorID)
}

// RenameGroup renames a group the actor belongs to.
func (s *GroupService) RenameGroup(ctx context.Context, groupID, name, actorID string) (*models.Group, error) {
	if name == "" {
		return nil, &ledger.ValidationError{Field: "name", Reason: "required"}
	}
	group, err := s.GetGroup(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateGroupName(ctx, groupID, name); err != nil {
		return nil, err
	}
	group.Name = name
	slog.Info("Group renamed", "group_id", groupID, "name", name)
	return group, nil
}

// AddMembers invites users into a group. Membership can only grow here;
// removal goes through RemoveMember and its balance guard.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, userIDs []string, actorID string) (*models.Group, error) {
	if _, err := s.GetGroup(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	for _, id := range userIDs {
		if _, err := s.store.GetUserByID(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.store.AddGroupMembers(ctx, groupID, userIDs); err != nil {
		return nil, err
	}
	slog.Info("Group members added", "group_id", groupID, "count", len(userIDs))
	return s.store.GetGroup(ctx, groupID)
}

// RemoveMember removes a user from a group. A member holding a nonzero
// balance cannot leave; they would take unsettled debt with them.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID, actorID string) error {
	group, err := s.GetGroup(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return &ledger.NotFoundError{Resource: "group member", ID: userID}
	}

	net, err := s.ledger.NetBalances(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !net[userID].IsZero() {
		return ErrMemberHasBalance
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, userID); err != nil {
		return err
	}
	slog.Info("Group member removed", "group_id", groupID, "user_id", userID)
	return nil
}
