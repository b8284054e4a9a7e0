package ledger

// ValidateExpense checks an expense against its group's member set before it
// may enter the ledger. No partial acceptance: the first violation rejects
// the whole entry.
func ValidateExpense(members map[string]bool, e Expense) error {
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if e.Payer == "" {
		return &ValidationError{Field: "payer", Reason: "required"}
	}
	if !members[e.Payer] {
		return &ValidationError{Field: "payer", Reason: "not a member of the group"}
	}
	if len(e.Participants) == 0 {
		return &ValidationError{Field: "participants", Reason: "must not be empty"}
	}
	seen := make(map[string]bool, len(e.Participants))
	for _, p := range e.Participants {
		if !members[p] {
			return &ValidationError{Field: "participants", Reason: "includes non-member " + p}
		}
		if seen[p] {
			return &ValidationError{Field: "participants", Reason: "duplicate participant " + p}
		}
		seen[p] = true
	}
	return nil
}

// ValidatePayment checks a settlement payment against its group's member
// set. Transfer-reference uniqueness is enforced by the store, not here,
// since it requires the group's recorded history.
func ValidatePayment(members map[string]bool, p Payment) error {
	if !p.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if p.Payer == "" || !members[p.Payer] {
		return &ValidationError{Field: "payer", Reason: "not a member of the group"}
	}
	if p.Payee == "" || !members[p.Payee] {
		return &ValidationError{Field: "payee", Reason: "not a member of the group"}
	}
	if p.Payer == p.Payee {
		return &ValidationError{Field: "payee", Reason: "must differ from payer"}
	}
	if p.TransferRef == "" {
		return &ValidationError{Field: "transfer_ref", Reason: "required"}
	}
	return nil
}
