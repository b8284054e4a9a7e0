package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/models"
)

// CreateFriendRequest persists a new friend request.
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}
	if req.Status == "" {
		req.Status = models.FriendRequestPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friend_requests (id, from_user_id, to_user_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		req.ID, req.FromUserID, req.ToUserID, req.Status, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friend request: %w", err)
	}
	return nil
}

// GetFriendRequest retrieves a friend request by ID.
func (s *SQLiteStore) GetFriendRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	req := &models.FriendRequest{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, from_user_id, to_user_id, status, created_at
		 FROM friend_requests WHERE id = ?`,
		id,
	).Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, &ledger.NotFoundError{Resource: "friend request", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return req, nil
}

// UpdateFriendRequestStatus transitions a request to accepted/rejected.
func (s *SQLiteStore) UpdateFriendRequestStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE friend_requests SET status = ? WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update friend request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Resource: "friend request", ID: id}
	}
	return nil
}

// ListFriendRequests returns pending requests addressed to the user,
// newest first.
func (s *SQLiteStore) ListFriendRequests(ctx context.Context, toUserID string) ([]*models.FriendRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_user_id, to_user_id, status, created_at
		 FROM friend_requests WHERE to_user_id = ? AND status = ?
		 ORDER BY created_at DESC`,
		toUserID, models.FriendRequestPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.FriendRequest
	for rows.Next() {
		req := &models.FriendRequest{}
		if err := rows.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &req.Status, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend requests: %w", err)
	}
	return requests, nil
}

// ListFriendIDs returns the IDs of all accepted friends of the user.
func (s *SQLiteStore) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT CASE WHEN from_user_id = ? THEN to_user_id ELSE from_user_id END
		 FROM friend_requests
		 WHERE (from_user_id = ? OR to_user_id = ?) AND status = ?
		 ORDER BY created_at`,
		userID, userID, userID, models.FriendRequestAccepted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friendIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		friendIDs = append(friendIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friendIDs, nil
}

// RemoveFriend deletes the accepted friendship between two users.
func (s *SQLiteStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friend_requests
		 WHERE status = ?
		   AND ((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))`,
		models.FriendRequestAccepted, userID, friendID, friendID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Resource: "friendship", ID: friendID}
	}
	return nil
}
