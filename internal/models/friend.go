package models

// Friend request lifecycle states.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest represents a friend connection between two users. An
// accepted request is the friendship; rejected requests stay for audit.
type FriendRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID string

	// FromUserID is the user who sent the request.
	FromUserID string

	// ToUserID is the user the request was sent to.
	ToUserID string

	// Status is one of FriendRequestPending, Accepted, Rejected.
	Status string

	// CreatedAt is the Unix timestamp when the request was sent.
	CreatedAt int64
}
