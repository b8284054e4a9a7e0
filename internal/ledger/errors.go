package ledger

import "fmt"

// ValidationError rejects a malformed entry before it can touch the ledger.
// Field names the offending input so the API layer can surface it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError signals a duplicate or lost-race write, e.g. a settlement
// transfer reference that was already recorded for the group. Callers should
// re-read rather than resubmit.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// NotFoundError signals an unknown group, member, or entry.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}
