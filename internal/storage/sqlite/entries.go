package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chipin-app/chipin-backend/internal/ledger"
	"github.com/chipin-app/chipin-backend/internal/models"
	"github.com/chipin-app/chipin-backend/internal/money"
)

// AppendExpense appends an expense and its split set to the group's ledger.
func (s *SQLiteStore) AppendExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var replaces interface{}
	if expense.Replaces != "" {
		replaces = expense.Replaces
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, title, payer_id, amount, tombstoned, replaces, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Title, expense.PayerID,
		expense.Amount.MinorUnits(), boolToInt(expense.Tombstoned), replaces,
		expense.CreatedBy, expense.CreatedAt,
	)
	if isUniqueViolation(err) {
		return &ledger.ConflictError{Reason: "expense already recorded: " + expense.ID}
	}
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, userID := range expense.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id) VALUES (?, ?)",
			expense.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, participants included.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.scanExpenseRow(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, title, payer_id, amount, tombstoned, replaces, created_by, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	))
	if err == sql.ErrNoRows {
		return nil, &ledger.NotFoundError{Resource: "expense", ID: expenseID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadParticipants(ctx, []*models.Expense{expense}); err != nil {
		return nil, err
	}
	return expense, nil
}

// TombstoneExpense soft-deletes an expense, keeping it in history.
func (s *SQLiteStore) TombstoneExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET tombstoned = 1 WHERE id = ?",
		expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to tombstone expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledger.NotFoundError{Resource: "expense", ID: expenseID}
	}
	return nil
}

// AppendPayment appends a settlement payment to the group's ledger. The
// UNIQUE (group_id, transfer_ref) constraint makes retried recordings fail
// instead of double-crediting.
func (s *SQLiteStore) AppendPayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}

	var note interface{}
	if payment.Note != "" {
		note = payment.Note
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, group_id, payer_id, payee_id, amount, transfer_ref, tombstoned, note, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.GroupID, payment.PayerID, payment.PayeeID,
		payment.Amount.MinorUnits(), payment.TransferRef, boolToInt(payment.Tombstoned),
		note, payment.CreatedBy, payment.CreatedAt,
	)
	if isUniqueViolation(err) {
		return &ledger.ConflictError{Reason: "transfer already recorded: " + payment.TransferRef}
	}
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// ListExpensesByGroup returns the group's expenses in append order,
// tombstoned ones included.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, title, payer_id, amount, tombstoned, replaces, created_by, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := s.scanExpenseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if err := s.loadParticipants(ctx, expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListPaymentsByGroup returns the group's payments in append order,
// tombstoned ones included.
func (s *SQLiteStore) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, payee_id, amount, transfer_ref, tombstoned, note, created_by, created_at
		 FROM payments WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var amount int64
		var tombstoned int
		var note sql.NullString
		if err := rows.Scan(&payment.ID, &payment.GroupID, &payment.PayerID, &payment.PayeeID,
			&amount, &payment.TransferRef, &tombstoned, &note, &payment.CreatedBy, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payment.Amount = money.FromMinorUnits(amount)
		payment.Tombstoned = tombstoned != 0
		if note.Valid {
			payment.Note = note.String
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *SQLiteStore) scanExpenseRow(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount int64
	var tombstoned int
	var replaces sql.NullString
	err := row.Scan(&expense.ID, &expense.GroupID, &expense.Title, &expense.PayerID,
		&amount, &tombstoned, &replaces, &expense.CreatedBy, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}
	expense.Amount = money.FromMinorUnits(amount)
	expense.Tombstoned = tombstoned != 0
	if replaces.Valid {
		expense.Replaces = replaces.String
	}
	return expense, nil
}

// loadParticipants fills in the split sets for the given expenses.
func (s *SQLiteStore) loadParticipants(ctx context.Context, expenses []*models.Expense) error {
	for _, expense := range expenses {
		rows, err := s.db.QueryContext(ctx,
			"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY user_id",
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get expense participants: %w", err)
		}
		for rows.Next() {
			var userID string
			if err := rows.Scan(&userID); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan participant: %w", err)
			}
			expense.Participants = append(expense.Participants, userID)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("failed to iterate participants: %w", err)
		}
		rows.Close()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
