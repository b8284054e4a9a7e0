package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique). Used for login and for
	// addressing friend requests.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// WalletAddress is the user's settlement wallet address (base58 public
	// key). Empty until the user links a wallet. The ledger never inspects
	// it; it only flows to clients so they can execute transfers.
	WalletAddress string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewUser creates a user with the given identity fields. The store assigns
// ID and CreatedAt on insert when unset.
func NewUser(email, name, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
}
