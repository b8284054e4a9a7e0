// Package models defines the core domain models for the ChipIn backend.
//
// # Models
//
//   - User: registered account with an optional settlement wallet address
//   - FriendRequest: a pending or resolved friend connection between users
//   - Group: a named set of members sharing a ledger
//   - Expense: an immutable shared cost recorded against a group
//   - Payment: an immutable settlement recorded against a group
//
// # Design Principles
//
//  1. **Append-only ledger**: Expense and Payment are never mutated or
//     physically deleted. Edits tombstone the old entry and record a new
//     one; deletes tombstone. Balance math skips tombstoned entries.
//  2. **Integer money**: amounts are money.Money minor units, never floats.
//  3. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
