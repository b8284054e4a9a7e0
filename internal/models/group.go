package models

// Group represents a set of users who share a ledger.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Members is the list of user IDs in this group. Every expense payer,
	// split participant, and payment party must come from this set.
	Members []string

	// CreatedBy is the user ID of the group creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// MemberSet returns the members as a lookup set for validation.
func (g *Group) MemberSet() map[string]bool {
	set := make(map[string]bool, len(g.Members))
	for _, m := range g.Members {
		set[m] = true
	}
	return set
}
