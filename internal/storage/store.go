// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/chipin-app/chipin-backend/internal/models"
)

// Store defines the interface for ChipIn persistence. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
//
// Ledger appends are idempotent on the client-supplied entry ID, and for
// payments additionally on (group, transfer reference): a duplicate append
// fails with a ledger.ConflictError instead of double-recording.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated when
	// unset. Fails on a duplicate email.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// UpdateUserWallet sets the user's settlement wallet address.
	UpdateUserWallet(ctx context.Context, userID, walletAddress string) error

	// CreateFriendRequest persists a new friend request.
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error

	// GetFriendRequest retrieves a friend request by ID.
	GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error)

	// UpdateFriendRequestStatus transitions a request to accepted/rejected.
	UpdateFriendRequestStatus(ctx context.Context, id, status string) error

	// ListFriendRequests returns pending requests addressed to the user.
	ListFriendRequests(ctx context.Context, toUserID string) ([]*models.FriendRequest, error)

	// ListFriendIDs returns the IDs of all accepted friends of the user.
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)

	// RemoveFriend deletes the accepted friendship between two users.
	RemoveFriend(ctx context.Context, userID, friendID string) error

	// CreateGroup persists a new group with its members.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group, including its member list.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group the user belongs to.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// UpdateGroupName renames a group.
	UpdateGroupName(ctx context.Context, groupID, name string) error

	// AddGroupMembers adds members to a group, ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error

	// RemoveGroupMember removes one member from a group. Balance guards
	// belong to the service layer, not here.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error

	// ListSharedGroups returns groups that contain both users.
	ListSharedGroups(ctx context.Context, userA, userB string) ([]*models.Group, error)

	// AppendExpense appends an expense to its group's ledger.
	AppendExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID, participants included.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// TombstoneExpense soft-deletes an expense, keeping it in history.
	TombstoneExpense(ctx context.Context, expenseID string) error

	// AppendPayment appends a settlement payment to its group's ledger.
	// A transfer reference already recorded for the group fails with a
	// ledger.ConflictError.
	AppendPayment(ctx context.Context, payment *models.Payment) error

	// ListExpensesByGroup returns the group's expenses in append order,
	// tombstoned ones included.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// ListPaymentsByGroup returns the group's payments in append order,
	// tombstoned ones included.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
